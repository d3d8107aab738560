package domain

// Restaurant is a venue returned by the restaurants search API.
type Restaurant struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Cuisines string  `json:"cuisines"`
	Rating   string  `json:"rating,omitempty"`
	Address  string  `json:"address"`
	Zipcode  string  `json:"zipcode,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	// Placeholder marks a synthetic record carrying only a message in Name.
	Placeholder bool `json:"placeholder,omitempty"`
}

// AsPlace derives a drawer place from the restaurant.
func (r Restaurant) AsPlace() Place {
	return Place{
		ID:      r.Zipcode + r.ID,
		Name:    r.Name,
		Address: r.Address,
		Lat:     r.Lat,
		Lng:     r.Lng,
	}
}
