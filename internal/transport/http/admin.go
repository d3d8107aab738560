package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/cimillas/neighbourhood-map/services/api/internal/app"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const adminKeyHeader = "X-Admin-Key"

// AdminPlacesService is the minimal interface needed for default-place admin endpoints.
type AdminPlacesService interface {
	CreateDefaultPlace(ctx context.Context, in app.CreateDefaultPlaceInput) (domain.Place, error)
	ListDefaultPlaces(ctx context.Context) ([]domain.Place, error)
	DeleteDefaultPlace(ctx context.Context, placeID string) error
	Reindex(ctx context.Context) (int, error)
}

// AdminOnly rejects requests that do not carry the admin key.
func AdminOnly(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(adminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createDefaultPlaceRequest struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// HandleAdminDefaultPlaces lists (GET) and creates (POST) default places.
func HandleAdminDefaultPlaces(svc AdminPlacesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			places, err := svc.ListDefaultPlaces(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			if places == nil {
				places = []domain.Place{}
			}
			writeJSON(w, http.StatusOK, places)
		case http.MethodPost:
			var req createDefaultPlaceRequest
			if !decodeBody(w, r, &req) {
				return
			}
			place, err := svc.CreateDefaultPlace(r.Context(), app.CreateDefaultPlaceInput{
				ID:      req.ID,
				Name:    req.Name,
				Address: req.Address,
				Lat:     req.Lat,
				Lng:     req.Lng,
			})
			if err != nil {
				writePlaceError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, place)
		default:
			methodNotAllowed(w)
		}
	}
}

// HandleAdminDefaultPlace deletes one default place: DELETE /admin/default-places/{id}.
func HandleAdminDefaultPlace(svc AdminPlacesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID, ok := parsePlacePath("/admin/default-places/", r.URL.EscapedPath())
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		if err := svc.DeleteDefaultPlace(r.Context(), placeID); err != nil {
			writePlaceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type reindexResponse struct {
	Indexed int `json:"indexed"`
}

// HandleAdminReindex pushes the default places into the search index.
func HandleAdminReindex(svc AdminPlacesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		n, err := svc.Reindex(r.Context())
		if err != nil {
			writePlaceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reindexResponse{Indexed: n})
	}
}
