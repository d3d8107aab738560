package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/auth"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/view"
)

var harbour = domain.Place{ID: "harbour", Name: "Harbour", Address: "Quay 1", Lat: 41.37, Lng: 2.18}

type stubCoordinator struct {
	mu          sync.Mutex
	places      []domain.Place
	fragments   []string
	removed     []string
	filter      string
	opened      bool
	navigateErr error
	addErr      error
	removeErr   error
	tabPlace    domain.Place
	tabErr      error
	search      []domain.Place
	searchErr   error
	settleErr   error
	snapshot    view.Snapshot
}

func (c *stubCoordinator) Open(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = true
}

func (c *stubCoordinator) Wait() {}

func (c *stubCoordinator) Navigate(_ context.Context, fragment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragments = append(c.fragments, fragment)
	return c.navigateErr
}

func (c *stubCoordinator) Settle(context.Context) error { return c.settleErr }

func (c *stubCoordinator) Snapshot() view.Snapshot { return c.snapshot }

func (c *stubCoordinator) Places() []domain.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Place{}, c.places...)
}

func (c *stubCoordinator) AddPlace(_ context.Context, place domain.Place) error {
	if c.addErr != nil {
		return c.addErr
	}
	if err := place.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.places = append(c.places, place)
	return nil
}

func (c *stubCoordinator) RemovePlace(_ context.Context, placeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, placeID)
	return c.removeErr
}

func (c *stubCoordinator) FilterPlaces(text string) []domain.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = text
	return nil
}

func (c *stubCoordinator) AddPlaceFromTab(context.Context, int) (domain.Place, error) {
	return c.tabPlace, c.tabErr
}

func (c *stubCoordinator) SearchAddress(context.Context, string) ([]domain.Place, error) {
	return c.search, c.searchErr
}

type stubSessions struct {
	coord *stubCoordinator
	users []string
}

func (s *stubSessions) Coordinator(userID string) Coordinator {
	s.users = append(s.users, userID)
	return s.coord
}

func authed(req *http.Request) *http.Request {
	return req.WithContext(auth.WithUserID(req.Context(), "u1"))
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Code
}

func TestHandleAnonymousSignIn(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	issuer := stubIssuer{token: auth.Token{Value: "tok", UserID: "u1", ExpiresAt: expires}}

	req := httptest.NewRequest(http.MethodPost, "/auth/anonymous", nil)
	rec := httptest.NewRecorder()
	HandleAnonymousSignIn(issuer).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp signInResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "tok" || resp.UserID != "u1" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	HandleAnonymousSignIn(stubIssuer{err: domain.ErrAuth}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/anonymous", nil))
	if rec.Code != http.StatusInternalServerError || decodeCode(t, rec) != codeSignInFailed {
		t.Fatalf("expected sign-in failure, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleAnonymousSignIn(issuer).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/anonymous", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

type stubIssuer struct {
	token auth.Token
	err   error
}

func (s stubIssuer) SignInAnonymously() (auth.Token, error) { return s.token, s.err }

func TestHandlePlaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		method          string
		body            string
		addErr          error
		unauthenticated bool
		expectedStatus  int
		expectedCode    string
	}{
		{name: "list", method: http.MethodGet, expectedStatus: http.StatusOK},
		{
			name:           "add",
			method:         http.MethodPost,
			body:           `{"id":"harbour","name":"Harbour","address":"Quay 1","lat":41.37,"lng":2.18}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			method:         http.MethodPost,
			body:           `{"id":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "invalid place",
			method:         http.MethodPost,
			body:           `{"id":"x","name":"","lat":0,"lng":0}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidPlace,
		},
		{
			name:           "store failure",
			method:         http.MethodPost,
			body:           `{"id":"harbour","name":"Harbour","lat":1,"lng":1}`,
			addErr:         errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   codeInternalError,
		},
		{
			name:            "unauthenticated",
			method:          http.MethodGet,
			unauthenticated: true,
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    codeUnauthorized,
		},
		{name: "method", method: http.MethodPut, expectedStatus: http.StatusMethodNotAllowed, expectedCode: codeMethodNotAllowed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			coord := &stubCoordinator{addErr: tc.addErr, places: []domain.Place{harbour}}
			req := httptest.NewRequest(tc.method, "/places", strings.NewReader(tc.body))
			if !tc.unauthenticated {
				req = authed(req)
			}
			rec := httptest.NewRecorder()
			HandlePlaces(&stubSessions{coord: coord}).ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedCode != "" {
				if got := decodeCode(t, rec); got != tc.expectedCode {
					t.Fatalf("expected code %s, got %s", tc.expectedCode, got)
				}
			}
			if tc.method == http.MethodGet && tc.expectedStatus == http.StatusOK {
				if !coord.opened {
					t.Fatalf("expected coordinator opened before listing")
				}
				var places []domain.Place
				if err := json.NewDecoder(rec.Body).Decode(&places); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if len(places) != 1 || places[0] != harbour {
					t.Fatalf("unexpected places %v", places)
				}
			}
		})
	}
}

func TestHandlePlace_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		removeErr      error
		expectedStatus int
		expectedID     string
	}{
		{name: "deleted", path: "/places/harbour", expectedStatus: http.StatusNoContent, expectedID: "harbour"},
		{name: "escaped id", path: "/places/a%2Fb", expectedStatus: http.StatusNoContent, expectedID: "a/b"},
		{name: "missing", path: "/places/nope", removeErr: domain.ErrPlaceNotFound, expectedStatus: http.StatusNotFound},
		{name: "nested path", path: "/places/a/b", expectedStatus: http.StatusNotFound},
		{name: "empty id", path: "/places/", expectedStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			coord := &stubCoordinator{removeErr: tc.removeErr}
			req := authed(httptest.NewRequest(http.MethodDelete, tc.path, nil))
			rec := httptest.NewRecorder()
			HandlePlace(&stubSessions{coord: coord}).ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d", tc.expectedStatus, rec.Code)
			}
			if tc.expectedID != "" && (len(coord.removed) != 1 || coord.removed[0] != tc.expectedID) {
				t.Fatalf("expected %s removed, got %v", tc.expectedID, coord.removed)
			}
		})
	}
}

func TestHandleSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		searchErr      error
		expectedStatus int
	}{
		{name: "found", query: "?q=quay", expectedStatus: http.StatusOK},
		{name: "missing query", query: "", expectedStatus: http.StatusBadRequest},
		{name: "unavailable", query: "?q=quay", searchErr: domain.ErrSearchUnavailable, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			coord := &stubCoordinator{search: []domain.Place{harbour}, searchErr: tc.searchErr}
			req := authed(httptest.NewRequest(http.MethodGet, "/search"+tc.query, nil))
			rec := httptest.NewRecorder()
			HandleSearch(&stubSessions{coord: coord}).ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d", tc.expectedStatus, rec.Code)
			}
		})
	}
}

func TestHandleNavigate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		navigateErr    error
		settleErr      error
		expectedStatus int
		expectedCode   string
	}{
		{name: "navigate", body: `{"fragment":"/"}`, expectedStatus: http.StatusOK},
		{name: "wait", body: `{"fragment":"/weather/p/n/a/1/2","wait":true}`, expectedStatus: http.StatusOK},
		{
			name:           "settle timeout",
			body:           `{"fragment":"/weather/p/n/a/1/2","wait":true}`,
			settleErr:      context.DeadlineExceeded,
			expectedStatus: http.StatusGatewayTimeout,
			expectedCode:   codeTimeout,
		},
		{
			name:           "invalid place",
			body:           `{"fragment":"/weather/p/n/a/1/2"}`,
			navigateErr:    domain.ErrInvalidPlace,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidPlace,
		},
		{
			name:           "unknown field",
			body:           `{"path":"/"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			coord := &stubCoordinator{
				navigateErr: tc.navigateErr,
				settleErr:   tc.settleErr,
				snapshot:    view.Snapshot{State: view.StateMap, MapVisible: true},
			}
			req := authed(httptest.NewRequest(http.MethodPost, "/navigate", strings.NewReader(tc.body)))
			rec := httptest.NewRecorder()
			HandleNavigate(&stubSessions{coord: coord}).ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedCode != "" {
				if got := decodeCode(t, rec); got != tc.expectedCode {
					t.Fatalf("expected code %s, got %s", tc.expectedCode, got)
				}
				return
			}
			var snap view.Snapshot
			if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if snap.State != view.StateMap || !snap.MapVisible {
				t.Fatalf("unexpected snapshot %+v", snap)
			}
		})
	}
}

func TestHandleView_EncodesState(t *testing.T) {
	t.Parallel()

	coord := &stubCoordinator{snapshot: view.Snapshot{
		State:       view.StateTabs,
		TabsVisible: true,
		ActiveKind:  domain.ViewWeather,
		Content: &domain.Result{
			Place:   harbour,
			Kind:    domain.ViewWeather,
			Payload: domain.WeatherPayload{Conditions: []domain.Weather{{Description: "Clear"}}},
		},
	}}
	req := authed(httptest.NewRequest(http.MethodGet, "/view", nil))
	rec := httptest.NewRecorder()
	HandleView(&stubSessions{coord: coord}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"state":"tabs"`, `"active_kind":"weather"`, `"description":"Clear"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestHandleFilter(t *testing.T) {
	t.Parallel()

	coord := &stubCoordinator{}
	req := authed(httptest.NewRequest(http.MethodPost, "/view/filter", bytes.NewBufferString(`{"text":"park"}`)))
	rec := httptest.NewRecorder()
	HandleFilter(&stubSessions{coord: coord}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if coord.filter != "park" {
		t.Fatalf("expected filter applied, got %q", coord.filter)
	}
}

func TestHandleTabPlace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		tabErr         error
		expectedStatus int
	}{
		{name: "added", body: `{"index":0}`, expectedStatus: http.StatusCreated},
		{name: "missing index", body: `{}`, expectedStatus: http.StatusBadRequest},
		{name: "no record", body: `{"index":3}`, tabErr: domain.ErrNoRecord, expectedStatus: http.StatusNotFound},
		{name: "signed out", body: `{"index":0}`, tabErr: domain.ErrAuth, expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			coord := &stubCoordinator{tabPlace: harbour, tabErr: tc.tabErr}
			req := authed(httptest.NewRequest(http.MethodPost, "/view/tab-places", strings.NewReader(tc.body)))
			rec := httptest.NewRecorder()
			HandleTabPlace(&stubSessions{coord: coord}).ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d", tc.expectedStatus, rec.Code)
			}
		})
	}
}

type stubNearby struct {
	places []domain.Place
	err    error
	got    domain.LatLng
}

func (s *stubNearby) Nearby(_ context.Context, loc domain.LatLng) ([]domain.Place, error) {
	s.got = loc
	return s.places, s.err
}

func TestHandleNearby(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
	}{
		{name: "found", query: "?lat=41.38&lng=2.17", expectedStatus: http.StatusOK},
		{name: "missing lng", query: "?lat=41.38", expectedStatus: http.StatusBadRequest},
		{name: "out of range", query: "?lat=100&lng=2", err: domain.ErrInvalidPlace, expectedStatus: http.StatusBadRequest},
		{name: "no index", query: "?lat=1&lng=2", err: domain.ErrSearchUnavailable, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			finder := &stubNearby{places: []domain.Place{harbour}, err: tc.err}
			rec := httptest.NewRecorder()
			HandleNearby(finder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/nearby"+tc.query, nil))

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d", tc.expectedStatus, rec.Code)
			}
		})
	}
}
