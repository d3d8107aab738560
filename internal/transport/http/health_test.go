package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		db     Pinger
		status int
		body   string
	}{
		{name: "no database", db: nil, status: 200, body: "ok"},
		{name: "database up", db: stubPinger{}, status: 200, body: "ok"},
		{name: "database down", db: stubPinger{err: errors.New("refused")}, status: 503, body: "database unavailable"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/health", nil)
			rec := httptest.NewRecorder()

			HealthHandler(tc.db)(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			if body := rec.Body.String(); body != tc.body {
				t.Fatalf("expected body %q, got %q", tc.body, body)
			}
		})
	}
}
