package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sort"
	"testing"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

func TestPlacesService_LoadUserPlaces(t *testing.T) {
	t.Parallel()

	defaults := []domain.Place{
		{ID: "d1", Name: "Museum", Lat: 1, Lng: 1},
		{ID: "d2", Name: "Park", Lat: 2, Lng: 2},
	}

	t.Run("delivers every user place exactly once", func(t *testing.T) {
		repo := newFakePlacesRepo(defaults)
		repo.user["u1"] = map[string]domain.Place{"p1": placeOne, "p2": placeTwo}
		svc := NewPlacesService(repo)

		var got []string
		n, err := svc.LoadUserPlaces(context.Background(), "u1", func(p domain.Place) { got = append(got, p.ID) })
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		sort.Strings(got)
		if n != 2 || len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
			t.Fatalf("unexpected places n=%d got=%v", n, got)
		}
	})

	t.Run("falls back to default places", func(t *testing.T) {
		svc := NewPlacesService(newFakePlacesRepo(defaults))

		var got []string
		n, err := svc.LoadUserPlaces(context.Background(), "new-user", func(p domain.Place) { got = append(got, p.ID) })
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 || len(got) != 2 {
			t.Fatalf("expected defaults, got %v", got)
		}
	})

	t.Run("no user and no default places", func(t *testing.T) {
		svc := NewPlacesService(newFakePlacesRepo(nil))

		_, err := svc.LoadUserPlaces(context.Background(), "u1", func(domain.Place) {})
		if !errors.Is(err, domain.ErrNoPlaces) {
			t.Fatalf("expected ErrNoPlaces, got %v", err)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		svc := NewPlacesService(newFakePlacesRepo(defaults))
		if _, err := svc.LoadUserPlaces(context.Background(), "", func(domain.Place) {}); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestPlacesService_AddAndRemove(t *testing.T) {
	t.Parallel()

	repo := newFakePlacesRepo(nil)
	searcher := &fakeSearcher{}
	svc := NewPlacesService(repo, WithSearcher(searcher), WithPlacesLogger(log.New(&bytes.Buffer{}, "", 0)))
	ctx := context.Background()

	if err := svc.AddPlace(ctx, "u1", domain.Place{ID: "x"}); !errors.Is(err, domain.ErrInvalidPlace) {
		t.Fatalf("expected ErrInvalidPlace, got %v", err)
	}
	if err := svc.AddPlace(ctx, "u1", placeOne); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.user["u1"][placeOne.ID]; !ok {
		t.Fatalf("expected place stored")
	}
	if len(searcher.indexed) != 1 || searcher.indexed[0].ID != placeOne.ID {
		t.Fatalf("expected place indexed, got %+v", searcher.indexed)
	}

	if err := svc.RemovePlace(ctx, "u1", placeOne.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.RemovePlace(ctx, "u1", placeOne.ID); !errors.Is(err, domain.ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
}

func TestPlacesService_SearchAddress(t *testing.T) {
	t.Parallel()

	t.Run("without searcher", func(t *testing.T) {
		svc := NewPlacesService(newFakePlacesRepo(nil))
		if _, err := svc.SearchAddress(context.Background(), "main", func(domain.Place) {}); !errors.Is(err, domain.ErrSearchUnavailable) {
			t.Fatalf("expected ErrSearchUnavailable, got %v", err)
		}
	})

	t.Run("sends matches to sink", func(t *testing.T) {
		searcher := &fakeSearcher{results: []domain.Place{placeOne, placeTwo}}
		svc := NewPlacesService(newFakePlacesRepo(nil), WithSearcher(searcher))

		var got []domain.Place
		n, err := svc.SearchAddress(context.Background(), "  main st ", func(p domain.Place) { got = append(got, p) })
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 || len(got) != 2 {
			t.Fatalf("expected 2 results, got %d", len(got))
		}
		if searcher.lastQuery != "main st" {
			t.Fatalf("expected trimmed query, got %q", searcher.lastQuery)
		}
	})
}

func TestPlacesService_Nearby(t *testing.T) {
	t.Parallel()

	if _, err := NewPlacesService(newFakePlacesRepo(nil)).Nearby(context.Background(), domain.LatLng{}); !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}

	searcher := &fakeSearcher{results: []domain.Place{placeOne, placeTwo}}
	svc := NewPlacesService(newFakePlacesRepo(nil), WithSearcher(searcher))

	if _, err := svc.Nearby(context.Background(), domain.LatLng{Lat: 120}); !errors.Is(err, domain.ErrInvalidPlace) {
		t.Fatalf("expected ErrInvalidPlace, got %v", err)
	}

	loc := domain.LatLng{Lat: 41.38, Lng: 2.17}
	got, err := svc.Nearby(context.Background(), loc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || searcher.lastNear != loc {
		t.Fatalf("unexpected nearby %v near %+v", got, searcher.lastNear)
	}
}

type fakePlacesRepo struct {
	user     map[string]map[string]domain.Place
	defaults []domain.Place
}

func newFakePlacesRepo(defaults []domain.Place) *fakePlacesRepo {
	return &fakePlacesRepo{
		user:     map[string]map[string]domain.Place{},
		defaults: defaults,
	}
}

func (f *fakePlacesRepo) ListUserPlaces(_ context.Context, userID string) ([]domain.Place, error) {
	out := make([]domain.Place, 0, len(f.user[userID]))
	for _, p := range f.user[userID] {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlacesRepo) ListDefaultPlaces(context.Context) ([]domain.Place, error) {
	return append([]domain.Place(nil), f.defaults...), nil
}

func (f *fakePlacesRepo) UpsertUserPlace(_ context.Context, userID string, place domain.Place) error {
	if f.user[userID] == nil {
		f.user[userID] = map[string]domain.Place{}
	}
	f.user[userID][place.ID] = place
	return nil
}

func (f *fakePlacesRepo) RemoveUserPlace(_ context.Context, userID, placeID string) error {
	if _, ok := f.user[userID][placeID]; !ok {
		return domain.ErrPlaceNotFound
	}
	delete(f.user[userID], placeID)
	return nil
}

type fakeSearcher struct {
	indexed   []domain.Place
	results   []domain.Place
	lastQuery string
	lastNear  domain.LatLng
}

func (f *fakeSearcher) IndexPlace(_ context.Context, place domain.Place) error {
	f.indexed = append(f.indexed, place)
	return nil
}

func (f *fakeSearcher) SearchAddress(_ context.Context, text string, _ int) ([]domain.Place, error) {
	f.lastQuery = text
	return f.results, nil
}

func (f *fakeSearcher) Nearby(_ context.Context, lat, lng float64, n int) ([]domain.Place, error) {
	f.lastNear = domain.LatLng{Lat: lat, Lng: lng}
	if n < len(f.results) {
		return f.results[:n], nil
	}
	return f.results, nil
}
