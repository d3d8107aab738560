package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

// HandlePlaces lists (GET) and adds (POST) the caller's places.
func HandlePlaces(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			coord.Open(r.Context())
			coord.Wait()
			writeJSON(w, http.StatusOK, coord.Places())
		case http.MethodPost:
			var req domain.Place
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := coord.AddPlace(r.Context(), req); err != nil {
				writePlaceError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, req)
		default:
			methodNotAllowed(w)
		}
	}
}

// HandlePlace deletes one of the caller's places: DELETE /places/{id}.
func HandlePlace(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}

		placeID, ok := parsePlacePath("/places/", r.URL.EscapedPath())
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}
		if err := coord.RemovePlace(r.Context(), placeID); err != nil {
			writePlaceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSearch returns known places matching ?q=.
func HandleSearch(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		text := strings.TrimSpace(r.URL.Query().Get("q"))
		if text == "" {
			writeError(w, http.StatusBadRequest, codeQueryRequired, "q is required")
			return
		}

		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}
		places, err := coord.SearchAddress(r.Context(), text)
		if err != nil {
			writePlaceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, places)
	}
}

// parsePlacePath extracts the escaped place id following prefix.
func parsePlacePath(prefix, path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func writePlaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPlace):
		writeError(w, http.StatusBadRequest, codeInvalidPlace, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, codePlaceNotFound, err.Error())
	case errors.Is(err, domain.ErrPlaceExists):
		writeError(w, http.StatusConflict, codePlaceExists, err.Error())
	case errors.Is(err, domain.ErrNoRecord):
		writeError(w, http.StatusNotFound, codeNoRecord, err.Error())
	case errors.Is(err, domain.ErrAuth):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrSearchUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeSearchUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

// NearbyFinder is the minimal interface needed for nearby search.
type NearbyFinder interface {
	Nearby(ctx context.Context, loc domain.LatLng) ([]domain.Place, error)
}

// HandleNearby returns indexed places closest to ?lat=&lng=.
func HandleNearby(finder NearbyFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		q := r.URL.Query()
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPlace, "lat and lng are required")
			return
		}

		places, err := finder.Nearby(r.Context(), domain.LatLng{Lat: lat, Lng: lng})
		if err != nil {
			writePlaceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, places)
	}
}
