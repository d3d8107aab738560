package domain

import (
	"fmt"
	"math"
	"strings"
)

// Place is a location the user keeps in the drawer list and can center the map on.
type Place struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Validate reports ErrInvalidPlace when the place cannot be stored or fetched for.
func (p Place) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id required", ErrInvalidPlace)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidPlace)
	}
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("%w: coordinates required", ErrInvalidPlace)
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidPlace)
	}
	return nil
}

// Location returns the map coordinates of the place.
func (p Place) Location() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

// LatLng is a bare map coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
