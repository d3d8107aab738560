// Package route maps URL fragments to navigation intents and back.
package route

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

type Kind int

const (
	NotFound Kind = iota
	Places
	Place
	Tab
)

func (k Kind) String() string {
	switch k {
	case Places:
		return "places"
	case Place:
		return "place"
	case Tab:
		return "tab"
	default:
		return "not_found"
	}
}

// Intent is a parsed fragment. Place is set for Place and Tab, View only
// for Tab.
type Intent struct {
	Route Kind
	Place domain.Place
	View  domain.ViewKind
}

const placeSegments = 5

// Parse accepts "/", "/places/:id/:name/:address/:lat/:lng" and the same
// shape under /events, /weather and /restaurants. A leading "#" is ignored.
func Parse(fragment string) Intent {
	path := strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	path = strings.Trim(path, "/")
	if path == "" {
		return Intent{Route: Places}
	}

	parts := strings.Split(path, "/")
	if len(parts) != placeSegments+1 {
		return Intent{Route: NotFound}
	}

	place, ok := parsePlace(parts[1:])
	if !ok {
		return Intent{Route: NotFound}
	}

	if parts[0] == "places" {
		return Intent{Route: Place, Place: place}
	}
	kind, err := domain.ParseViewKind(parts[0])
	if err != nil || !kind.Fetchable() {
		return Intent{Route: NotFound}
	}
	return Intent{Route: Tab, Place: place, View: kind}
}

func parsePlace(parts []string) (domain.Place, bool) {
	values := make([]string, len(parts))
	for i, raw := range parts {
		v, err := url.PathUnescape(raw)
		if err != nil {
			return domain.Place{}, false
		}
		values[i] = v
	}

	lat, err := strconv.ParseFloat(values[3], 64)
	if err != nil {
		return domain.Place{}, false
	}
	lng, err := strconv.ParseFloat(values[4], 64)
	if err != nil {
		return domain.Place{}, false
	}

	place := domain.Place{
		ID:      values[0],
		Name:    values[1],
		Address: values[2],
		Lat:     lat,
		Lng:     lng,
	}
	if place.Validate() != nil {
		return domain.Place{}, false
	}
	return place, true
}

// Fragment renders intent as a path Parse understands. NotFound renders "".
func Fragment(intent Intent) string {
	switch intent.Route {
	case Places:
		return "/"
	case Place:
		return placePath("places", intent.Place)
	case Tab:
		return placePath(string(intent.View), intent.Place)
	default:
		return ""
	}
}

func placePath(prefix string, p domain.Place) string {
	return fmt.Sprintf("/%s/%s/%s/%s/%s/%s",
		prefix,
		url.PathEscape(p.ID),
		url.PathEscape(p.Name),
		url.PathEscape(p.Address),
		strconv.FormatFloat(p.Lat, 'f', -1, 64),
		strconv.FormatFloat(p.Lng, 'f', -1, 64),
	)
}
