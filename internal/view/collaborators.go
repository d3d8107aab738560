package view

import (
	"context"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/sequence"
)

// MapWidget is the map display. Marker indexes follow the order places
// were added to the drawer list.
type MapWidget interface {
	AddMarker(place domain.Place)
	RemoveMarker(index int)
	HideAllMarkers()
	ShowAllMarkers()
	ShowMarker(index int)
	CenterOnLocation(loc domain.LatLng)
	// Refresh forces a relayout; maps shown again after being hidden need it.
	Refresh(center domain.LatLng)
	SetVisible(visible bool)
}

// Views builds and toggles the drawer, tabs and error views. Each Create
// method is called at most once per coordinator.
type Views interface {
	CreateDrawer()
	CreateTabs()
	CreateError()
	SetTabsVisible(visible bool)
	SetErrorVisible(visible bool)
	ShowSpinner(on bool)
	RenderTab(res domain.Result)
	ClearTab()
}

type DataRequester interface {
	Request(ctx context.Context, place domain.Place, kind domain.ViewKind, deliver sequence.DeliverFunc) (sequence.Seq, error)
}

type PlaceStore interface {
	LoadUserPlaces(ctx context.Context, userID string, onEach func(domain.Place)) (int, error)
	AddPlace(ctx context.Context, userID string, place domain.Place) error
	RemovePlace(ctx context.Context, userID, placeID string) error
	// SearchAddress calls sink for every match before it returns.
	SearchAddress(ctx context.Context, text string, sink func(domain.Place)) (int, error)
}

type Identity interface {
	OnSignedIn(onSignedIn func(userID string), onError func(err error))
	UserID() string
}

type Sequencer interface {
	Supersede() sequence.Seq
	IsCurrent(seq sequence.Seq) bool
}

type nopMap struct{}

func (nopMap) AddMarker(domain.Place)         {}
func (nopMap) RemoveMarker(int)               {}
func (nopMap) HideAllMarkers()                {}
func (nopMap) ShowAllMarkers()                {}
func (nopMap) ShowMarker(int)                 {}
func (nopMap) CenterOnLocation(domain.LatLng) {}
func (nopMap) Refresh(domain.LatLng)          {}
func (nopMap) SetVisible(bool)                {}

type nopViews struct{}

func (nopViews) CreateDrawer()           {}
func (nopViews) CreateTabs()             {}
func (nopViews) CreateError()            {}
func (nopViews) SetTabsVisible(bool)     {}
func (nopViews) SetErrorVisible(bool)    {}
func (nopViews) ShowSpinner(bool)        {}
func (nopViews) RenderTab(domain.Result) {}
func (nopViews) ClearTab()               {}
