package http

import (
	"context"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/session"
	"github.com/cimillas/neighbourhood-map/services/api/internal/view"
)

// Coordinator is the part of a session's view coordinator the handlers use.
type Coordinator interface {
	Open(ctx context.Context)
	Wait()
	Navigate(ctx context.Context, fragment string) error
	Settle(ctx context.Context) error
	Snapshot() view.Snapshot
	Places() []domain.Place
	AddPlace(ctx context.Context, place domain.Place) error
	RemovePlace(ctx context.Context, placeID string) error
	FilterPlaces(text string) []domain.Place
	AddPlaceFromTab(ctx context.Context, index int) (domain.Place, error)
	SearchAddress(ctx context.Context, text string) ([]domain.Place, error)
}

// Sessions resolves the coordinator of an authenticated user.
type Sessions interface {
	Coordinator(userID string) Coordinator
}

// RegistrySessions serves coordinators from a session registry.
type RegistrySessions struct {
	Registry *session.Registry
}

func (s RegistrySessions) Coordinator(userID string) Coordinator {
	return s.Registry.Get(userID).View
}
