package app

import (
	"context"
	"log"
	"strings"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

type PlacesRepository interface {
	ListUserPlaces(ctx context.Context, userID string) ([]domain.Place, error)
	ListDefaultPlaces(ctx context.Context) ([]domain.Place, error)
	UpsertUserPlace(ctx context.Context, userID string, place domain.Place) error
	RemoveUserPlace(ctx context.Context, userID, placeID string) error
}

// PlaceSearcher backs address search over known places.
type PlaceSearcher interface {
	IndexPlace(ctx context.Context, place domain.Place) error
	SearchAddress(ctx context.Context, text string, limit int) ([]domain.Place, error)
	Nearby(ctx context.Context, lat, lng float64, n int) ([]domain.Place, error)
}

const (
	defaultSearchLimit = 10
	defaultNearbyCount = 3
)

type PlacesService struct {
	repo     PlacesRepository
	searcher PlaceSearcher
	logger   *log.Logger
}

func NewPlacesService(repo PlacesRepository, opts ...PlacesServiceOption) *PlacesService {
	svc := &PlacesService{
		repo:   repo,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PlacesServiceOption func(*PlacesService)

// WithSearcher enables address search and indexing of added places.
func WithSearcher(s PlaceSearcher) PlacesServiceOption {
	return func(svc *PlacesService) {
		svc.searcher = s
	}
}

func WithPlacesLogger(l *log.Logger) PlacesServiceOption {
	return func(svc *PlacesService) {
		if l != nil {
			svc.logger = l
		}
	}
}

// LoadUserPlaces hands each of the user's places to onEach, one at a time,
// in no particular order. A user without places gets the shared defaults.
func (s *PlacesService) LoadUserPlaces(ctx context.Context, userID string, onEach func(domain.Place)) (int, error) {
	if userID == "" {
		return 0, domain.ErrInvalidID
	}
	places, err := s.repo.ListUserPlaces(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(places) == 0 {
		places, err = s.repo.ListDefaultPlaces(ctx)
		if err != nil {
			return 0, err
		}
		if len(places) == 0 {
			return 0, domain.ErrNoPlaces
		}
	}
	for _, p := range places {
		onEach(p)
	}
	return len(places), nil
}

func (s *PlacesService) AddPlace(ctx context.Context, userID string, place domain.Place) error {
	if userID == "" {
		return domain.ErrInvalidID
	}
	if err := place.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpsertUserPlace(ctx, userID, place); err != nil {
		return err
	}
	if s.searcher != nil {
		if err := s.searcher.IndexPlace(ctx, place); err != nil {
			s.logger.Printf("WARN: index place id=%s: %v", place.ID, err)
		}
	}
	return nil
}

func (s *PlacesService) RemovePlace(ctx context.Context, userID, placeID string) error {
	if userID == "" || placeID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.RemoveUserPlace(ctx, userID, placeID)
}

// SearchAddress sends places matching text to sink and returns how many.
func (s *PlacesService) SearchAddress(ctx context.Context, text string, sink func(domain.Place)) (int, error) {
	if s.searcher == nil {
		return 0, domain.ErrSearchUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	places, err := s.searcher.SearchAddress(ctx, text, defaultSearchLimit)
	if err != nil {
		return 0, err
	}
	for _, p := range places {
		sink(p)
	}
	return len(places), nil
}

// Nearby returns the indexed places closest to loc.
func (s *PlacesService) Nearby(ctx context.Context, loc domain.LatLng) ([]domain.Place, error) {
	if s.searcher == nil {
		return nil, domain.ErrSearchUnavailable
	}
	origin := domain.Place{ID: "origin", Name: "origin", Lat: loc.Lat, Lng: loc.Lng}
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	return s.searcher.Nearby(ctx, loc.Lat, loc.Lng, defaultNearbyCount)
}
