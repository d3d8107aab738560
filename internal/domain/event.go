package domain

// Event is a local event returned by the events search API.
type Event struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	StartTime    string  `json:"start_time"`
	VenueID      string  `json:"venue_id"`
	VenueName    string  `json:"venue_name"`
	VenueURL     string  `json:"venue_url"`
	VenueAddress string  `json:"venue_address"`
	CityName     string  `json:"city_name"`
	ImageURL     string  `json:"image_url,omitempty"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	// Placeholder marks a synthetic record carrying only a message in Title.
	Placeholder bool `json:"placeholder,omitempty"`
}

// AsPlace derives a drawer place from the event's venue.
func (e Event) AsPlace() Place {
	address := e.VenueAddress
	if e.CityName != "" {
		address += ", " + e.CityName
	}
	return Place{
		ID:      e.ID + e.VenueID,
		Name:    e.VenueName,
		Address: address,
		Lat:     e.Lat,
		Lng:     e.Lng,
	}
}
