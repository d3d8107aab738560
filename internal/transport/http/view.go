package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const maxSettleWait = 25 * time.Second

// HandleView returns the caller's current view snapshot.
func HandleView(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, coord.Snapshot())
	}
}

type navigateRequest struct {
	Fragment string `json:"fragment"`
	// Wait holds the response until a requested tab has rendered.
	Wait bool `json:"wait"`
}

// HandleNavigate applies a URL fragment and returns the resulting snapshot.
func HandleNavigate(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req navigateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}

		if err := coord.Navigate(r.Context(), req.Fragment); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidPlace):
				writeError(w, http.StatusBadRequest, codeInvalidPlace, err.Error())
			case errors.Is(err, domain.ErrUnknownViewKind):
				writeError(w, http.StatusBadRequest, codeUnknownViewKind, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		if req.Wait {
			ctx, cancel := context.WithTimeout(r.Context(), maxSettleWait)
			defer cancel()
			if err := coord.Settle(ctx); err != nil {
				writeError(w, http.StatusGatewayTimeout, codeTimeout, "view did not settle in time")
				return
			}
		}
		writeJSON(w, http.StatusOK, coord.Snapshot())
	}
}

type filterRequest struct {
	Text string `json:"text"`
}

// HandleFilter narrows the drawer list and markers by name.
func HandleFilter(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req filterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}
		coord.FilterPlaces(req.Text)
		writeJSON(w, http.StatusOK, coord.Snapshot())
	}
}

type tabPlaceRequest struct {
	Index *int `json:"index"`
}

// HandleTabPlace saves the place behind a record of the rendered tab.
func HandleTabPlace(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req tabPlaceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Index == nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "index is required")
			return
		}
		coord, ok := coordinatorFor(w, r, sessions)
		if !ok {
			return
		}

		place, err := coord.AddPlaceFromTab(r.Context(), *req.Index)
		if err != nil {
			writePlaceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, place)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}
