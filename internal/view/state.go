package view

import (
	"fmt"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

type State int

const (
	StateUninitialized State = iota
	StateMap
	StateTabs
	StateError
)

func (s State) String() string {
	switch s {
	case StateMap:
		return "map"
	case StateTabs:
		return "tabs"
	case StateError:
		return "error"
	default:
		return "uninitialized"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "uninitialized":
		*s = StateUninitialized
	case "map":
		*s = StateMap
	case "tabs":
		*s = StateTabs
	case "error":
		*s = StateError
	default:
		return fmt.Errorf("unknown view state %q", b)
	}
	return nil
}

// Snapshot is a copy of what the coordinator currently shows.
type Snapshot struct {
	State        State           `json:"state"`
	Spinner      bool            `json:"spinner"`
	MapVisible   bool            `json:"map_visible"`
	TabsVisible  bool            `json:"tabs_visible"`
	ErrorVisible bool            `json:"error_visible"`
	Center       *domain.LatLng  `json:"center,omitempty"`
	ActivePlace  *domain.Place   `json:"active_place,omitempty"`
	ActiveKind   domain.ViewKind `json:"active_kind,omitempty"`
	Title        string          `json:"title,omitempty"`
	Content      *domain.Result  `json:"content,omitempty"`
	// Places is the drawer list after the current filter.
	Places []domain.Place `json:"places"`
	Filter string         `json:"filter,omitempty"`
	Alert  string         `json:"alert,omitempty"`
}
