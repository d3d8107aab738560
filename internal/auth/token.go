// Package auth issues anonymous identities and carries them through requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/cimillas/neighbourhood-map/services/api/internal/clock"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const defaultTokenTTL = 24 * time.Hour

// Token is a signed anonymous session.
type Token struct {
	Value     string
	UserID    string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 tokens whose subject is the user id.
type Issuer struct {
	key   []byte
	clock clock.Clock
	ttl   time.Duration
}

func NewIssuer(signingKey []byte, clk clock.Clock) (*Issuer, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("signing key required")
	}
	return &Issuer{key: signingKey, clock: clk, ttl: defaultTokenTTL}, nil
}

// SignInAnonymously mints a new user id and a token for it.
func (i *Issuer) SignInAnonymously() (Token, error) {
	now := i.clock.Now()
	userID := uuid.NewString()
	expires := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	})
	signed, err := token.SignedString(i.key)
	if err != nil {
		return Token{}, fmt.Errorf("%w: sign token: %v", domain.ErrAuth, err)
	}
	return Token{Value: signed, UserID: userID, ExpiresAt: expires}, nil
}

// Verify returns the user id carried by a valid token.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.key, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	if !claims.VerifyExpiresAt(i.clock.Now().Unix(), true) {
		return "", fmt.Errorf("%w: token expired", domain.ErrAuth)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: bad subject", domain.ErrAuth)
	}
	return claims.Subject, nil
}

type (
	userKey struct{}
	slotKey struct{}
)

// TrackUser returns a context through which UserID also reports a user id
// verified further down the handler chain.
func TrackUser(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotKey{}, atomic.NewString(""))
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	if slot, ok := ctx.Value(slotKey{}).(*atomic.String); ok {
		slot.Store(userID)
	}
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the id stored by WithUserID, or "".
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userKey{}).(string); ok {
		return id
	}
	if slot, ok := ctx.Value(slotKey{}).(*atomic.String); ok {
		return slot.Load()
	}
	return ""
}
