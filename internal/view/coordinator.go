// Package view decides which top-level view is visible (map, tabs or error)
// and drives tab data requests for the active place.
package view

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/messages"
	"github.com/cimillas/neighbourhood-map/services/api/internal/route"
	"github.com/cimillas/neighbourhood-map/services/api/internal/sequence"
)

// Coordinator is the view state machine of one session. Views are created
// on first use and only toggled afterwards.
type Coordinator struct {
	data     DataRequester
	seq      Sequencer
	store    PlaceStore
	identity Identity
	mapw     MapWidget
	views    Views
	messages *messages.Catalog
	logger   *log.Logger

	mu sync.Mutex

	drawerCreated bool
	tabsCreated   bool
	errorCreated  bool

	state        State
	spinner      bool
	mapVisible   bool
	mapHidden    bool // hidden at least once since creation
	tabsVisible  bool
	errorVisible bool
	center       *domain.LatLng

	activePlace *domain.Place
	activeKind  domain.ViewKind
	content     *domain.Result
	pending     sequence.Seq
	settled     chan struct{}

	places []domain.Place
	filter string
	alert  string

	background sync.WaitGroup
}

type Option func(*Coordinator)

func WithMapWidget(m MapWidget) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.mapw = m
		}
	}
}

func WithViews(v Views) Option {
	return func(c *Coordinator) {
		if v != nil {
			c.views = v
		}
	}
}

func WithMessages(m *messages.Catalog) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.messages = m
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(data DataRequester, seq Sequencer, store PlaceStore, identity Identity, opts ...Option) *Coordinator {
	settled := make(chan struct{})
	close(settled)
	c := &Coordinator{
		data:     data,
		seq:      seq,
		store:    store,
		identity: identity,
		mapw:     nopMap{},
		views:    nopViews{},
		messages: messages.New(),
		logger:   log.Default(),
		settled:  settled,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open creates the drawer and map if needed, which starts loading the
// user's places, without changing the visible view.
func (c *Coordinator) Open(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDrawerLocked(ctx)
}

// ShowPlaces shows the map with every place marker.
func (c *Coordinator) ShowPlaces(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showMapLocked(ctx)
}

// ShowPlace shows the map centered on place.
func (c *Coordinator) ShowPlace(ctx context.Context, place domain.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc := place.Location()
	c.center = &loc
	c.showMapLocked(ctx)
	c.mapw.CenterOnLocation(loc)
}

func (c *Coordinator) showMapLocked(ctx context.Context) {
	c.ensureDrawerLocked(ctx)
	c.cancelPendingLocked()
	c.setTabsVisibleLocked(false)
	c.setErrorVisibleLocked(false)
	c.setMapVisibleLocked(true)
	c.state = StateMap
}

// ShowTab hides the map and requests kind data for place. The tab renders
// when the request is delivered, unless a newer navigation superseded it.
func (c *Coordinator) ShowTab(ctx context.Context, place domain.Place, kind domain.ViewKind) (sequence.Seq, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDrawerLocked(ctx)
	c.setMapVisibleLocked(false)
	c.setErrorVisibleLocked(false)
	if !c.tabsCreated {
		c.views.CreateTabs()
		c.tabsCreated = true
	}
	c.setTabsVisibleLocked(true)

	p := place
	c.activePlace = &p
	c.activeKind = kind
	c.content = nil
	c.views.ClearTab()
	c.setSpinnerLocked(true)

	// Fetches outlive the caller so a finished HTTP request does not abort them.
	seq, err := c.data.Request(context.WithoutCancel(ctx), place, kind, c.deliver)
	if err != nil {
		// The rejected request consumed no sequence; an older one must not
		// render under this place's header.
		c.cancelPendingLocked()
		return 0, err
	}
	c.pending = seq
	return seq, nil
}

func (c *Coordinator) deliver(res domain.Result, seq sequence.Seq) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.IsCurrent(seq) || seq != c.pending {
		return
	}
	c.setSpinnerLocked(false)
	r := res
	c.content = &r
	c.views.RenderTab(res)
	c.state = StateTabs
}

// ShowError shows the global error view used for unmatched navigation.
func (c *Coordinator) ShowError(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureDrawerLocked(ctx)
	c.cancelPendingLocked()
	c.setMapVisibleLocked(false)
	c.setTabsVisibleLocked(false)
	if !c.errorCreated {
		c.views.CreateError()
		c.errorCreated = true
	}
	c.setErrorVisibleLocked(true)
	c.state = StateError
}

// Navigate applies a URL fragment.
func (c *Coordinator) Navigate(ctx context.Context, fragment string) error {
	intent := route.Parse(fragment)
	switch intent.Route {
	case route.Places:
		c.ShowPlaces(ctx)
	case route.Place:
		c.ShowPlace(ctx, intent.Place)
	case route.Tab:
		if _, err := c.ShowTab(ctx, intent.Place, intent.View); err != nil {
			return err
		}
	default:
		c.ShowError(ctx)
	}
	return nil
}

// SelectMarker navigates to the place behind a clicked marker.
func (c *Coordinator) SelectMarker(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.places) {
		c.mu.Unlock()
		return domain.ErrPlaceNotFound
	}
	place := c.places[index]
	c.mu.Unlock()

	c.ShowPlace(ctx, place)
	return nil
}

// Settle blocks until the pending tab request is rendered or superseded.
func (c *Coordinator) Settle(ctx context.Context) error {
	c.mu.Lock()
	ch := c.settled
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until background place loading has finished.
func (c *Coordinator) Wait() {
	c.background.Wait()
}

// Places returns every place in the drawer list, ignoring the filter.
func (c *Coordinator) Places() []domain.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Place(nil), c.places...)
}

// AddPlace saves place for the signed-in user and adds its marker.
func (c *Coordinator) AddPlace(ctx context.Context, place domain.Place) error {
	userID := c.identity.UserID()
	if userID == "" {
		return domain.ErrAuth
	}
	if err := c.store.AddPlace(ctx, userID, place); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.addPlaceLocked(place)
	return nil
}

// RemovePlace deletes the place from the user's list and the map.
func (c *Coordinator) RemovePlace(ctx context.Context, placeID string) error {
	userID := c.identity.UserID()
	if userID == "" {
		return domain.ErrAuth
	}
	if err := c.store.RemovePlace(ctx, userID, placeID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(placeID); i >= 0 {
		c.mapw.RemoveMarker(i)
		c.places = append(c.places[:i], c.places[i+1:]...)
	}
	return nil
}

// FilterPlaces shows only markers whose name contains text, ignoring case.
// An empty text shows every marker.
func (c *Coordinator) FilterPlaces(text string) []domain.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = strings.TrimSpace(text)
	c.applyFilterLocked()
	return c.visiblePlacesLocked()
}

// AddPlaceFromTab adds the place behind the index-th record of the rendered
// events or restaurants tab.
func (c *Coordinator) AddPlaceFromTab(ctx context.Context, index int) (domain.Place, error) {
	c.mu.Lock()
	place, err := c.tabRecordLocked(index)
	c.mu.Unlock()
	if err != nil {
		return domain.Place{}, err
	}
	if err := c.AddPlace(ctx, place); err != nil {
		return domain.Place{}, err
	}
	return place, nil
}

func (c *Coordinator) tabRecordLocked(index int) (domain.Place, error) {
	if c.state != StateTabs || c.content == nil || c.content.IsError {
		return domain.Place{}, domain.ErrNoRecord
	}
	switch p := c.content.Payload.(type) {
	case domain.EventsPayload:
		if index < 0 || index >= len(p.Events) || p.Events[index].Placeholder {
			return domain.Place{}, domain.ErrNoRecord
		}
		return p.Events[index].AsPlace(), nil
	case domain.RestaurantsPayload:
		if index < 0 || index >= len(p.Restaurants) || p.Restaurants[index].Placeholder {
			return domain.Place{}, domain.ErrNoRecord
		}
		return p.Restaurants[index].AsPlace(), nil
	default:
		return domain.Place{}, domain.ErrNoRecord
	}
}

// SearchAddress returns known places matching text.
func (c *Coordinator) SearchAddress(ctx context.Context, text string) ([]domain.Place, error) {
	found := []domain.Place{}
	// The sink runs synchronously, before SearchAddress returns.
	if _, err := c.store.SearchAddress(ctx, text, func(p domain.Place) {
		found = append(found, p)
	}); err != nil {
		return nil, err
	}
	return found, nil
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:        c.state,
		Spinner:      c.spinner,
		MapVisible:   c.mapVisible,
		TabsVisible:  c.tabsVisible,
		ErrorVisible: c.errorVisible,
		Places:       c.visiblePlacesLocked(),
		Filter:       c.filter,
		Alert:        c.alert,
	}
	if c.center != nil {
		loc := *c.center
		snap.Center = &loc
	}
	if c.tabsVisible && c.activePlace != nil {
		p := *c.activePlace
		snap.ActivePlace = &p
		snap.ActiveKind = c.activeKind
		snap.Title = c.activeKind.Title()
	}
	if c.tabsVisible && c.content != nil {
		res := *c.content
		if res.Payload != nil {
			res.Payload = res.Payload.Clone()
		}
		snap.Content = &res
	}
	return snap
}

func (c *Coordinator) ensureDrawerLocked(ctx context.Context) {
	if c.drawerCreated {
		return
	}
	c.drawerCreated = true
	c.views.CreateDrawer()
	c.setMapVisibleLocked(true)

	loadCtx := context.WithoutCancel(ctx)
	c.background.Add(1)
	c.identity.OnSignedIn(
		func(userID string) {
			go func() {
				defer c.background.Done()
				c.loadPlaces(loadCtx, userID)
			}()
		},
		func(err error) {
			// May run synchronously while c.mu is held.
			go func() {
				defer c.background.Done()
				c.logger.Printf("sign-in failed err=%v", err)
				c.setAlert(c.messages.AuthFailed())
			}()
		},
	)
}

func (c *Coordinator) loadPlaces(ctx context.Context, userID string) {
	_, err := c.store.LoadUserPlaces(ctx, userID, func(p domain.Place) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.addPlaceLocked(p)
	})
	if err == nil || errors.Is(err, domain.ErrNoPlaces) {
		return
	}
	c.logger.Printf("load places failed user=%s err=%v", userID, err)
	c.setAlert(c.messages.PlacesUnavailable())
}

func (c *Coordinator) setAlert(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = msg
}

func (c *Coordinator) addPlaceLocked(p domain.Place) {
	if i := c.indexLocked(p.ID); i >= 0 {
		c.places[i] = p
		return
	}
	c.places = append(c.places, p)
	c.mapw.AddMarker(p)
	if c.filter != "" {
		c.applyFilterLocked()
	}
}

func (c *Coordinator) indexLocked(placeID string) int {
	for i, p := range c.places {
		if p.ID == placeID {
			return i
		}
	}
	return -1
}

func (c *Coordinator) applyFilterLocked() {
	if c.filter == "" {
		c.mapw.ShowAllMarkers()
		return
	}
	c.mapw.HideAllMarkers()
	for i, p := range c.places {
		if matchesFilter(p, c.filter) {
			c.mapw.ShowMarker(i)
		}
	}
}

func (c *Coordinator) visiblePlacesLocked() []domain.Place {
	out := make([]domain.Place, 0, len(c.places))
	for _, p := range c.places {
		if c.filter == "" || matchesFilter(p, c.filter) {
			out = append(out, p)
		}
	}
	return out
}

func matchesFilter(p domain.Place, filter string) bool {
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter))
}

// cancelPendingLocked makes any in-flight tab request stale.
func (c *Coordinator) cancelPendingLocked() {
	c.seq.Supersede()
	c.pending = 0
	c.setSpinnerLocked(false)
}

func (c *Coordinator) setSpinnerLocked(on bool) {
	if on == c.spinner {
		return
	}
	c.spinner = on
	c.views.ShowSpinner(on)
	if on {
		c.settled = make(chan struct{})
	} else {
		close(c.settled)
	}
}

func (c *Coordinator) setMapVisibleLocked(visible bool) {
	if visible == c.mapVisible {
		return
	}
	c.mapVisible = visible
	c.mapw.SetVisible(visible)
	if !visible {
		c.mapHidden = true
		return
	}
	if c.mapHidden {
		var center domain.LatLng
		if c.center != nil {
			center = *c.center
		}
		c.mapw.Refresh(center)
	}
}

func (c *Coordinator) setTabsVisibleLocked(visible bool) {
	if visible == c.tabsVisible {
		return
	}
	c.tabsVisible = visible
	c.views.SetTabsVisible(visible)
}

func (c *Coordinator) setErrorVisibleLocked(visible bool) {
	if visible == c.errorVisible {
		return
	}
	c.errorVisible = visible
	c.views.SetErrorVisible(visible)
}
