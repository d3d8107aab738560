package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/cache"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/messages"
	"github.com/cimillas/neighbourhood-map/services/api/internal/sequence"
)

type EventsSource interface {
	SearchEvents(ctx context.Context, place domain.Place) (domain.EventsPayload, error)
}

type WeatherSource interface {
	CurrentWeather(ctx context.Context, place domain.Place) (domain.WeatherPayload, error)
}

type RestaurantsSource interface {
	SearchRestaurants(ctx context.Context, place domain.Place) (domain.RestaurantsPayload, error)
}

// Sources groups the third-party clients one DataService fetches from.
type Sources struct {
	Events      EventsSource
	Weather     WeatherSource
	Restaurants RestaurantsSource
}

const (
	defaultEventsTTL      = time.Hour
	defaultRestaurantsTTL = time.Hour
	defaultWeatherTTL     = 10 * time.Minute

	defaultEventsTimeout = 20 * time.Second
	defaultHTTPTimeout   = 5 * time.Second
)

// DataService fetches tab data for a place: cache first, network on a miss,
// always delivered through the sequencer so only the newest request lands.
type DataService struct {
	cache    *cache.Cache
	seq      *sequence.Sequencer
	sources  Sources
	messages *messages.Catalog
	logger   *log.Logger
	ttl      map[domain.ViewKind]time.Duration
	timeout  map[domain.ViewKind]time.Duration
}

func NewDataService(c *cache.Cache, seq *sequence.Sequencer, sources Sources, opts ...DataServiceOption) *DataService {
	svc := &DataService{
		cache:    c,
		seq:      seq,
		sources:  sources,
		messages: messages.New(),
		logger:   log.Default(),
		ttl: map[domain.ViewKind]time.Duration{
			domain.ViewEvents:      defaultEventsTTL,
			domain.ViewRestaurants: defaultRestaurantsTTL,
			domain.ViewWeather:     defaultWeatherTTL,
		},
		timeout: map[domain.ViewKind]time.Duration{
			domain.ViewEvents:      defaultEventsTimeout,
			domain.ViewRestaurants: defaultHTTPTimeout,
			domain.ViewWeather:     defaultHTTPTimeout,
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type DataServiceOption func(*DataService)

// WithTTL overrides how long results of kind stay cached.
func WithTTL(kind domain.ViewKind, d time.Duration) DataServiceOption {
	return func(s *DataService) {
		if d > 0 {
			s.ttl[kind] = d
		}
	}
}

// WithTimeout overrides the network budget for kind.
func WithTimeout(kind domain.ViewKind, d time.Duration) DataServiceOption {
	return func(s *DataService) {
		if d > 0 {
			s.timeout[kind] = d
		}
	}
}

// WithMessages replaces the English message catalog.
func WithMessages(c *messages.Catalog) DataServiceOption {
	return func(s *DataService) {
		if c != nil {
			s.messages = c
		}
	}
}

func WithLogger(l *log.Logger) DataServiceOption {
	return func(s *DataService) {
		if l != nil {
			s.logger = l
		}
	}
}

// Request starts fetching kind data for place and returns the sequence the
// delivery will carry. Invalid input fails synchronously without consuming
// a sequence; everything after that is reported through deliver.
func (s *DataService) Request(ctx context.Context, place domain.Place, kind domain.ViewKind, deliver sequence.DeliverFunc) (sequence.Seq, error) {
	if err := place.Validate(); err != nil {
		return 0, err
	}
	if !kind.Fetchable() || !s.hasSource(kind) {
		return 0, domain.ErrUnknownViewKind
	}

	stamp := domain.Stamp(kind, place.ID)
	if payload, ok := s.cache.Lookup(stamp); ok {
		res := domain.Result{Place: place, Kind: kind, Payload: payload}
		if isPlaceholder(payload) {
			res.Err = domain.ErrEmptyResult
			res.Message = s.emptyMessage(kind)
		}
		return s.seq.Dispatch(ctx, func(context.Context) domain.Result { return res }, deliver), nil
	}

	return s.seq.Dispatch(ctx, func(ctx context.Context) domain.Result {
		return s.fetch(ctx, place, kind, stamp)
	}, deliver), nil
}

func (s *DataService) fetch(ctx context.Context, place domain.Place, kind domain.ViewKind, stamp string) domain.Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout[kind])
	defer cancel()

	payload, err := s.call(ctx, place, kind)
	if err != nil {
		s.logger.Printf("fetch failed kind=%s place=%s err=%v", kind, place.ID, err)
		return s.errorResult(place, kind, err)
	}

	res := domain.Result{Place: place, Kind: kind, Payload: payload}
	if payload.Len() == 0 {
		msg := s.emptyMessage(kind)
		res.Payload, _ = domain.PlaceholderPayload(kind, msg)
		res.Message = msg
		res.Err = domain.ErrEmptyResult
	}
	s.cache.Store(stamp, s.ttl[kind], res.Payload)
	return res
}

type fetched struct {
	payload domain.Payload
	err     error
}

// call waits for the source or the kind's budget, whichever ends first. A
// source that ignores ctx keeps running in the background; its answer is
// discarded.
func (s *DataService) call(ctx context.Context, place domain.Place, kind domain.ViewKind) (domain.Payload, error) {
	done := make(chan fetched, 1)
	go func() {
		payload, err := s.callSource(ctx, place, kind)
		done <- fetched{payload: payload, err: err}
	}()

	select {
	case f := <-done:
		if f.err == nil && ctx.Err() != nil {
			// Answered after the budget ran out: still a timeout.
			f.err = ctx.Err()
		}
		return f.payload, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DataService) callSource(ctx context.Context, place domain.Place, kind domain.ViewKind) (domain.Payload, error) {
	switch kind {
	case domain.ViewEvents:
		return s.sources.Events.SearchEvents(ctx, place)
	case domain.ViewWeather:
		return s.sources.Weather.CurrentWeather(ctx, place)
	case domain.ViewRestaurants:
		return s.sources.Restaurants.SearchRestaurants(ctx, place)
	default:
		return nil, domain.ErrUnknownViewKind
	}
}

func (s *DataService) errorResult(place domain.Place, kind domain.ViewKind, err error) domain.Result {
	var msg string
	switch {
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		msg = s.messages.TimedOut()
		err = domain.ErrTimeout
	default:
		msg = s.messages.RequestFailed(err.Error())
		if !errors.Is(err, domain.ErrNetwork) {
			err = errors.Join(domain.ErrNetwork, err)
		}
	}
	payload, _ := domain.PlaceholderPayload(kind, msg)
	return domain.Result{
		Place:   place,
		Kind:    kind,
		Payload: payload,
		IsError: true,
		Message: msg,
		Err:     err,
	}
}

func (s *DataService) emptyMessage(kind domain.ViewKind) string {
	switch kind {
	case domain.ViewEvents:
		return s.messages.NoEvents()
	case domain.ViewWeather:
		return s.messages.NoWeather()
	case domain.ViewRestaurants:
		return s.messages.NoRestaurants()
	default:
		return ""
	}
}

func (s *DataService) hasSource(kind domain.ViewKind) bool {
	switch kind {
	case domain.ViewEvents:
		return s.sources.Events != nil
	case domain.ViewWeather:
		return s.sources.Weather != nil
	case domain.ViewRestaurants:
		return s.sources.Restaurants != nil
	default:
		return false
	}
}

func isPlaceholder(p domain.Payload) bool {
	switch v := p.(type) {
	case domain.EventsPayload:
		return len(v.Events) > 0 && v.Events[0].Placeholder
	case domain.WeatherPayload:
		return len(v.Conditions) > 0 && v.Conditions[0].Placeholder
	case domain.RestaurantsPayload:
		return len(v.Restaurants) > 0 && v.Restaurants[0].Placeholder
	default:
		return false
	}
}
