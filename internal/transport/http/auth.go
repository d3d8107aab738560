package http

import (
	"net/http"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/auth"
)

// TokenIssuer is the minimal interface needed for anonymous sign-in.
type TokenIssuer interface {
	SignInAnonymously() (auth.Token, error)
}

// HandleAnonymousSignIn returns an HTTP handler issuing anonymous tokens.
func HandleAnonymousSignIn(issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		token, err := issuer.SignInAnonymously()
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeSignInFailed, "sign-in failed")
			return
		}

		writeJSON(w, http.StatusCreated, signInResponse{
			Token:     token.Value,
			UserID:    token.UserID,
			ExpiresAt: token.ExpiresAt,
		})
	}
}

type signInResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// coordinatorFor resolves the caller's coordinator or answers 401.
func coordinatorFor(w http.ResponseWriter, r *http.Request, sessions Sessions) (Coordinator, bool) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return nil, false
	}
	return sessions.Coordinator(userID), true
}
