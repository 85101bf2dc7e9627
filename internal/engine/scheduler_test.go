package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/wodtimer/internal/clock"
)

func TestSchedulerTicksAtPeriod(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk)

	var at []time.Duration
	gen := s.Start(250*time.Millisecond, func(g uint64) {
		at = append(at, clk.Now().Sub(epoch))
	})
	require.NotZero(t, gen)
	assert.True(t, s.Active())
	assert.Equal(t, 250*time.Millisecond, s.Period())

	clk.Advance(time.Second)
	assert.Equal(t, []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		750 * time.Millisecond,
		time.Second,
	}, at)
}

func TestSchedulerPassesGeneration(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk)

	var seen []uint64
	first := s.Start(time.Second, func(g uint64) { seen = append(seen, g) })
	clk.Advance(time.Second)
	second := s.Start(time.Second, func(g uint64) { seen = append(seen, g) })
	clk.Advance(2 * time.Second)

	assert.Greater(t, second, first)
	assert.Equal(t, []uint64{first, second, second}, seen)
}

func TestSchedulerCancel(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk)

	calls := 0
	s.Start(time.Second, func(uint64) { calls++ })
	clk.Advance(2 * time.Second)
	s.Cancel()
	clk.Advance(5 * time.Second)

	assert.Equal(t, 2, calls)
	assert.False(t, s.Active())
	assert.Zero(t, clk.Pending())
}

func TestSchedulerCancelFromHandler(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk)

	calls := 0
	s.Start(time.Second, func(uint64) {
		calls++
		s.Cancel()
	})
	clk.Advance(10 * time.Second)

	assert.Equal(t, 1, calls)
	assert.Zero(t, clk.Pending())
}

func TestSchedulerRestartFromHandlerReplacesStream(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk)

	var slow, fast int
	s.Start(time.Second, func(uint64) {
		slow++
		s.Start(100*time.Millisecond, func(uint64) { fast++ })
	})
	clk.Advance(2 * time.Second)

	assert.Equal(t, 1, slow)
	assert.Equal(t, 10, fast)
	assert.Equal(t, 1, clk.Pending())
}

func TestSchedulerHandlersDoNotOverlap(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk)

	depth, maxDepth := 0, 0
	s.Start(100*time.Millisecond, func(uint64) {
		depth++
		maxDepth = max(maxDepth, depth)
		// Simulates a slow handler; the next tick is armed only afterwards.
		clk.Set(clk.Now().Add(300 * time.Millisecond))
		depth--
	})
	clk.Advance(time.Second)

	assert.Equal(t, 1, maxDepth)
	assert.Equal(t, 1, clk.Pending())
}
