package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

type PlacesRepository struct {
	pool *pgxpool.Pool
}

func NewPlacesRepository(pool *pgxpool.Pool) *PlacesRepository {
	return &PlacesRepository{pool: pool}
}

func (r *PlacesRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PlacesRepository) ListUserPlaces(ctx context.Context, userID string) ([]domain.Place, error) {
	const query = `
SELECT place_id, name, address, lat, lng
FROM user_places
WHERE user_id = $1
ORDER BY created_at, place_id`

	places, err := r.listPlaces(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list user places: %w", err)
	}
	return places, nil
}

func (r *PlacesRepository) ListDefaultPlaces(ctx context.Context) ([]domain.Place, error) {
	const query = `SELECT id, name, address, lat, lng FROM default_places ORDER BY position, id`

	places, err := r.listPlaces(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list default places: %w", err)
	}
	return places, nil
}

// UpsertUserPlace stores place for the user, registering the user on first
// write. Saving a place with a known id replaces it.
func (r *PlacesRepository) UpsertUserPlace(ctx context.Context, userID string, place domain.Place) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID); err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("ensure user: %w", err)
		}

		const stmt = `
INSERT INTO user_places (user_id, place_id, name, address, lat, lng)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, place_id)
DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, lat = EXCLUDED.lat, lng = EXCLUDED.lng`

		if _, err := r.exec(ctx, stmt, userID, place.ID, place.Name, place.Address, place.Lat, place.Lng); err != nil {
			return fmt.Errorf("upsert user place: %w", err)
		}
		return nil
	})
}

func (r *PlacesRepository) RemoveUserPlace(ctx context.Context, userID, placeID string) error {
	tag, err := r.exec(ctx, `DELETE FROM user_places WHERE user_id = $1 AND place_id = $2`, userID, placeID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("remove user place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaceNotFound
	}
	return nil
}

func (r *PlacesRepository) listPlaces(ctx context.Context, sql string, args ...any) ([]domain.Place, error) {
	rows, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Place, error) {
		var p domain.Place
		err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Lat, &p.Lng)
		return p, err
	})
}

func (r *PlacesRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return conn(ctx, r.pool).Exec(ctx, sql, args...)
}

func (r *PlacesRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return conn(ctx, r.pool).Query(ctx, sql, args...)
}
