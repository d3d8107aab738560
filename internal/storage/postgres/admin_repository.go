package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

// AdminRepository writes the default_places table. Reads share the
// PlacesRepository query path.
type AdminRepository struct {
	*PlacesRepository
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{PlacesRepository: NewPlacesRepository(pool)}
}

// CreateDefaultPlace appends place after the current last default.
func (r *AdminRepository) CreateDefaultPlace(ctx context.Context, place domain.Place) error {
	const stmt = `
INSERT INTO default_places (id, name, address, lat, lng, position)
SELECT $1, $2, $3, $4, $5, COALESCE(MAX(position), 0) + 1
FROM default_places`
	_, err := r.exec(ctx, stmt, place.ID, place.Name, place.Address, place.Lat, place.Lng)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlaceExists
		}
		return fmt.Errorf("create default place: %w", err)
	}
	return nil
}

func (r *AdminRepository) DeleteDefaultPlace(ctx context.Context, placeID string) error {
	tag, err := r.exec(ctx, `DELETE FROM default_places WHERE id = $1`, placeID)
	if err != nil {
		return fmt.Errorf("delete default place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaceNotFound
	}
	return nil
}
