package app

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

// AdminRepository manages the shared default places new users start with.
type AdminRepository interface {
	CreateDefaultPlace(ctx context.Context, place domain.Place) error
	ListDefaultPlaces(ctx context.Context) ([]domain.Place, error)
	DeleteDefaultPlace(ctx context.Context, placeID string) error
}

type AdminService struct {
	repo     AdminRepository
	searcher PlaceSearcher
	logger   *log.Logger
}

func NewAdminService(repo AdminRepository, searcher PlaceSearcher, logger *log.Logger) *AdminService {
	if logger == nil {
		logger = log.Default()
	}
	return &AdminService{
		repo:     repo,
		searcher: searcher,
		logger:   logger,
	}
}

type CreateDefaultPlaceInput struct {
	// ID is generated when empty.
	ID      string
	Name    string
	Address string
	Lat     float64
	Lng     float64
}

func (s *AdminService) CreateDefaultPlace(ctx context.Context, in CreateDefaultPlaceInput) (domain.Place, error) {
	place := domain.Place{
		ID:      strings.TrimSpace(in.ID),
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Lat:     in.Lat,
		Lng:     in.Lng,
	}
	if place.ID == "" {
		place.ID = uuid.NewString()
	}
	if err := place.Validate(); err != nil {
		return domain.Place{}, err
	}

	if err := s.repo.CreateDefaultPlace(ctx, place); err != nil {
		return domain.Place{}, err
	}
	if s.searcher != nil {
		if err := s.searcher.IndexPlace(ctx, place); err != nil {
			s.logger.Printf("WARN: index default place id=%s: %v", place.ID, err)
		}
	}
	return place, nil
}

func (s *AdminService) ListDefaultPlaces(ctx context.Context) ([]domain.Place, error) {
	return s.repo.ListDefaultPlaces(ctx)
}

func (s *AdminService) DeleteDefaultPlace(ctx context.Context, placeID string) error {
	if strings.TrimSpace(placeID) == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteDefaultPlace(ctx, placeID)
}

// Reindex pushes every default place into the search index and returns how
// many were indexed. It stops at the first indexing error.
func (s *AdminService) Reindex(ctx context.Context) (int, error) {
	if s.searcher == nil {
		return 0, domain.ErrSearchUnavailable
	}
	places, err := s.repo.ListDefaultPlaces(ctx)
	if err != nil {
		return 0, err
	}
	for i, p := range places {
		if err := s.searcher.IndexPlace(ctx, p); err != nil {
			return i, err
		}
	}
	s.logger.Printf("reindexed default places count=%d", len(places))
	return len(places), nil
}
