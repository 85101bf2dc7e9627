package engine

import (
	"sync"
	"time"

	"github.com/adibhanna/wodtimer/internal/clock"
)

// Scheduler drives a single periodic tick stream. The next tick is armed
// only after the previous handler returns, so handlers never overlap.
// Every Start bumps the generation; callbacks armed for an older
// generation are dropped.
type Scheduler struct {
	clock clock.Clock

	mu     sync.Mutex
	gen    uint64
	active bool
	timer  clock.Timer
	period time.Duration
}

func NewScheduler(clk clock.Clock) *Scheduler {
	return &Scheduler{clock: clk}
}

// Start cancels any active stream and begins a new one calling fn every
// period. It returns the new stream's generation, which is also passed to
// fn so the receiver can discard ticks it no longer expects.
func (s *Scheduler) Start(period time.Duration, fn func(gen uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.active = true
	s.period = period
	s.armLocked(s.gen, fn)
	return s.gen
}

// Cancel stops the active stream. A callback already in flight finds its
// generation stale and does nothing.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.active = false
}

func (s *Scheduler) armLocked(gen uint64, fn func(uint64)) {
	s.timer = s.clock.AfterFunc(s.period, func() {
		s.fire(gen, fn)
	})
}

func (s *Scheduler) fire(gen uint64, fn func(uint64)) {
	if !s.current(gen) {
		return
	}

	fn(gen)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.active {
		return
	}
	s.armLocked(gen, fn)
}

func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen && s.active
}
