package domain

// Payload is the typed result of one data source. The concrete types are
// EventsPayload, WeatherPayload and RestaurantsPayload.
type Payload interface {
	Kind() ViewKind
	// Len is the number of records, placeholders included.
	Len() int
	// Clone returns a deep copy the caller may mutate.
	Clone() Payload
	isPayload()
}

type EventsPayload struct {
	Events []Event `json:"events"`
}

func (EventsPayload) Kind() ViewKind { return ViewEvents }
func (p EventsPayload) Len() int     { return len(p.Events) }
func (EventsPayload) isPayload()     {}

func (p EventsPayload) Clone() Payload {
	return EventsPayload{Events: append([]Event(nil), p.Events...)}
}

type WeatherPayload struct {
	Conditions []Weather `json:"conditions"`
}

func (WeatherPayload) Kind() ViewKind { return ViewWeather }
func (p WeatherPayload) Len() int     { return len(p.Conditions) }
func (WeatherPayload) isPayload()     {}

func (p WeatherPayload) Clone() Payload {
	return WeatherPayload{Conditions: append([]Weather(nil), p.Conditions...)}
}

type RestaurantsPayload struct {
	Restaurants []Restaurant `json:"restaurants"`
}

func (RestaurantsPayload) Kind() ViewKind { return ViewRestaurants }
func (p RestaurantsPayload) Len() int     { return len(p.Restaurants) }
func (RestaurantsPayload) isPayload()     {}

func (p RestaurantsPayload) Clone() Payload {
	return RestaurantsPayload{Restaurants: append([]Restaurant(nil), p.Restaurants...)}
}

// PlaceholderPayload builds a single synthetic record carrying msg, so views
// render "nothing found" and error states the same way as real data.
func PlaceholderPayload(kind ViewKind, msg string) (Payload, error) {
	switch kind {
	case ViewEvents:
		return EventsPayload{Events: []Event{{Title: msg, Placeholder: true}}}, nil
	case ViewWeather:
		return WeatherPayload{Conditions: []Weather{{Description: msg, Placeholder: true}}}, nil
	case ViewRestaurants:
		return RestaurantsPayload{Restaurants: []Restaurant{{Name: msg, Placeholder: true}}}, nil
	default:
		return nil, ErrUnknownViewKind
	}
}
