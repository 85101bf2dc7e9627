package engine

import "time"

// SessionClock converts wall-clock reads into whole elapsed seconds. It
// holds only a start timestamp; pauses are folded in by re-deriving that
// timestamp on resume, so elapsed time never depends on tick cadence.
type SessionClock struct {
	start   time.Time
	started bool
}

// Start records now as the session start. It reports false, leaving the
// clock untouched, when the clock is already running.
func (c *SessionClock) Start(now time.Time) bool {
	if c.started {
		return false
	}
	c.start = now
	c.started = true
	return true
}

// ElapsedSeconds is floor((now - start) / 1s), never negative.
func (c *SessionClock) ElapsedSeconds(now time.Time) int {
	if !c.started {
		return 0
	}
	d := now.Sub(c.start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// Resume shifts the start so that ElapsedSeconds(now) == pausedElapsed.
func (c *SessionClock) Resume(pausedElapsed int, now time.Time) {
	c.start = now.Add(-time.Duration(pausedElapsed) * time.Second)
	c.started = true
}

func (c *SessionClock) Reset() {
	c.start = time.Time{}
	c.started = false
}

func (c *SessionClock) Started() bool {
	return c.started
}
