package domain

// ViewKind names a category of secondary data shown in the tabs view.
type ViewKind string

const (
	ViewEvents      ViewKind = "events"
	ViewWeather     ViewKind = "weather"
	ViewRestaurants ViewKind = "restaurants"
	// ViewOthers is a stamp namespace with no data source behind it.
	ViewOthers ViewKind = "others"
)

// ParseViewKind maps a route segment to a ViewKind.
func ParseViewKind(s string) (ViewKind, error) {
	switch ViewKind(s) {
	case ViewEvents, ViewWeather, ViewRestaurants, ViewOthers:
		return ViewKind(s), nil
	default:
		return "", ErrUnknownViewKind
	}
}

// Fetchable reports whether a data source exists for the kind.
func (k ViewKind) Fetchable() bool {
	switch k {
	case ViewEvents, ViewWeather, ViewRestaurants:
		return true
	default:
		return false
	}
}

// Title is the heading the tabs view shows for the kind.
func (k ViewKind) Title() string {
	switch k {
	case ViewEvents:
		return "Local Events"
	case ViewWeather:
		return "Local Weather"
	case ViewRestaurants:
		return "Local Restaurants"
	default:
		return ""
	}
}

// Stamp is the cache key for a kind of data about one place.
func Stamp(kind ViewKind, placeID string) string {
	return string(kind) + placeID
}
