package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cimillas/neighbourhood-map/services/api/internal/app"
	"github.com/cimillas/neighbourhood-map/services/api/internal/auth"
	"github.com/cimillas/neighbourhood-map/services/api/internal/clock"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/session"
	"github.com/cimillas/neighbourhood-map/services/api/internal/storage/postgres"
	"github.com/cimillas/neighbourhood-map/services/api/internal/testutil"
)

func TestPlaces_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateUsers(t, ctx, pool)

	placesSvc := app.NewPlacesService(postgres.NewPlacesRepository(pool))
	sessions := RegistrySessions{Registry: session.NewRegistry(app.Sources{}, placesSvc)}
	issuer, err := auth.NewIssuer([]byte("integration-key"), clock.NewSystem())
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	token, err := issuer.SignInAnonymously()
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	places := auth.Middleware(issuer, HandlePlaces(sessions))
	do := func(method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/places", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token.Value)
		rec := httptest.NewRecorder()
		places.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var defaults []domain.Place
	if err := json.NewDecoder(rec.Body).Decode(&defaults); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(defaults) == 0 {
		t.Fatalf("expected default places for a new user")
	}

	rec = do(http.MethodPost, `{"id":"harbour","name":"Harbour","address":"Quay 1","lat":41.37,"lng":2.18}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_places WHERE user_id = $1 AND place_id = $2`,
		token.UserID, "harbour",
	).Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored place, got %d", count)
	}

	req := httptest.NewRequest(http.MethodDelete, "/places/harbour", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec = httptest.NewRecorder()
	auth.Middleware(issuer, HandlePlace(sessions)).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "")
	var after []domain.Place
	if err := json.NewDecoder(rec.Body).Decode(&after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range after {
		if p.ID == "harbour" {
			t.Fatalf("expected harbour removed, got %v", after)
		}
	}
}
