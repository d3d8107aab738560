// Package session keeps one cache, sequencer and view coordinator per user.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/app"
	"github.com/cimillas/neighbourhood-map/services/api/internal/auth"
	"github.com/cimillas/neighbourhood-map/services/api/internal/cache"
	"github.com/cimillas/neighbourhood-map/services/api/internal/clock"
	"github.com/cimillas/neighbourhood-map/services/api/internal/messages"
	"github.com/cimillas/neighbourhood-map/services/api/internal/sequence"
	"github.com/cimillas/neighbourhood-map/services/api/internal/view"
)

const defaultIdleTTL = 30 * time.Minute

type Session struct {
	UserID    string
	Cache     *cache.Cache
	Sequencer *sequence.Sequencer
	Data      *app.DataService
	View      *view.Coordinator

	lastSeen time.Time
}

type Registry struct {
	sources  app.Sources
	places   view.PlaceStore
	clock    clock.Clock
	idleTTL  time.Duration
	messages *messages.Catalog
	logger   *log.Logger
	dataOpts []app.DataServiceOption

	mu       sync.Mutex
	sessions map[string]*Session
}

type Option func(*Registry)

// WithIdleTTL sets how long an untouched session is kept.
func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

func WithMessages(m *messages.Catalog) Option {
	return func(r *Registry) {
		if m != nil {
			r.messages = m
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDataOptions is applied to every session's DataService.
func WithDataOptions(opts ...app.DataServiceOption) Option {
	return func(r *Registry) {
		r.dataOpts = append(r.dataOpts, opts...)
	}
}

func NewRegistry(sources app.Sources, places view.PlaceStore, opts ...Option) *Registry {
	r := &Registry{
		sources:  sources,
		places:   places,
		clock:    clock.NewSystem(),
		idleTTL:  defaultIdleTTL,
		messages: messages.New(),
		logger:   log.Default(),
		sessions: map[string]*Session{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session of an authenticated user, creating it on first
// use. Sessions idle for longer than the TTL are dropped first.
func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.dropIdleLocked(now)

	s, ok := r.sessions[userID]
	if !ok {
		s = r.newSession(userID)
		r.sessions[userID] = s
	}
	s.lastSeen = now
	return s
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) dropIdleLocked(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.idleTTL {
			delete(r.sessions, id)
			r.logger.Printf("session dropped user=%s idle=%s", id, now.Sub(s.lastSeen))
		}
	}
}

func (r *Registry) newSession(userID string) *Session {
	c := cache.New(r.clock)
	seq := sequence.New()
	opts := append([]app.DataServiceOption{
		app.WithMessages(r.messages),
		app.WithLogger(r.logger),
	}, r.dataOpts...)
	data := app.NewDataService(c, seq, r.sources, opts...)
	coord := view.New(data, seq, r.places, auth.Resolved(userID),
		view.WithMessages(r.messages),
		view.WithLogger(r.logger),
	)
	return &Session{
		UserID:    userID,
		Cache:     c,
		Sequencer: seq,
		Data:      data,
		View:      coord,
	}
}
