// Package sequence orders asynchronous requests so that only the most
// recently started one reaches the view. Superseded work is not cancelled;
// its delivery is dropped.
package sequence

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

// Seq identifies one logical request.
type Seq uint64

// Work produces the result of one request. It must not panic on failure;
// failures are results with IsError set.
type Work func(ctx context.Context) domain.Result

// DeliverFunc receives a result whose sequence was still current.
type DeliverFunc func(res domain.Result, seq Seq)

// Sequencer hands out monotonic sequence numbers and filters deliveries.
type Sequencer struct {
	counter *atomic.Uint64
	dropped *atomic.Uint64

	// deliverMu serializes delivery callbacks.
	deliverMu sync.Mutex
	inflight  sync.WaitGroup
}

func New() *Sequencer {
	return &Sequencer{
		counter: atomic.NewUint64(0),
		dropped: atomic.NewUint64(0),
	}
}

// Next consumes and returns a new sequence number.
func (s *Sequencer) Next() Seq {
	return Seq(s.counter.Inc())
}

// Supersede consumes a number without attaching work to it, so any
// in-flight request becomes stale.
func (s *Sequencer) Supersede() Seq {
	return s.Next()
}

// Current is the most recently issued number (0 before the first).
func (s *Sequencer) Current() Seq {
	return Seq(s.counter.Load())
}

// IsCurrent reports whether seq is still the newest request.
func (s *Sequencer) IsCurrent(seq Seq) bool {
	return seq == s.Current()
}

// Dispatch runs work on its own goroutine under a fresh sequence number and
// hands the result to deliver if no newer request started in the meantime.
func (s *Sequencer) Dispatch(ctx context.Context, work Work, deliver DeliverFunc) Seq {
	seq := s.Next()
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		res := work(ctx)
		s.deliver(seq, res, deliver)
	}()
	return seq
}

func (s *Sequencer) deliver(seq Seq, res domain.Result, deliver DeliverFunc) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if !s.IsCurrent(seq) {
		s.dropped.Inc()
		return
	}
	if deliver != nil {
		deliver(res, seq)
	}
}

// Dropped counts deliveries suppressed as stale.
func (s *Sequencer) Dropped() uint64 {
	return s.dropped.Load()
}

// Wait blocks until every dispatched request has been delivered or dropped.
func (s *Sequencer) Wait() {
	s.inflight.Wait()
}
