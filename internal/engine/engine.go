// Package engine implements the workout timer state machine. A session
// moves Idle → Ready → Countdown → Running ⇄ Paused → Completed; while
// Running, round and interval progress are re-derived from wall-clock
// elapsed time on every tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adibhanna/wodtimer/internal/clock"
	"github.com/adibhanna/wodtimer/internal/models"
)

// ErrSessionActive is returned by Configure while a session is counting
// down, running or paused.
var ErrSessionActive = errors.New("workout session in progress")

const (
	DefaultCountdownSeconds = 3
	DefaultCountdownTick    = time.Second
	DefaultRunningTick      = 100 * time.Millisecond
	DefaultFinalCueSeconds  = 10
)

// Option configures the engine.
type Option func(*Engine)

// WithCountdown sets the countdown length in seconds. Zero starts the
// session immediately.
func WithCountdown(seconds int) Option {
	return func(e *Engine) {
		if seconds >= 0 {
			e.countdownSeconds = seconds
		}
	}
}

// WithTickPeriods sets how often the scheduler ticks while counting down
// and while running.
func WithTickPeriods(countdown, running time.Duration) Option {
	return func(e *Engine) {
		if countdown > 0 {
			e.countdownTick = countdown
		}
		if running > 0 {
			e.runningTick = running
		}
	}
}

// WithFinalCueSeconds sets how many closing seconds of a bounded session
// emit CueFinalSeconds. Zero disables them.
func WithFinalCueSeconds(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.finalCueSeconds = n
		}
	}
}

// WithCompletionHandler registers fn to receive the finalized result each
// time a session enters Completed.
func WithCompletionHandler(fn func(Result)) Option {
	return func(e *Engine) {
		e.onComplete = fn
	}
}

// WithCueHandler registers fn to receive sound/vibration cues.
func WithCueHandler(fn func(Cue)) Option {
	return func(e *Engine) {
		e.onCue = fn
	}
}

// Engine owns one workout session. Commands and ticks are serialized on a
// single mutex; handlers run after it is released, in emission order, and
// may call back into the engine.
type Engine struct {
	clock            clock.Clock
	log              *slog.Logger
	scheduler        *Scheduler
	countdownSeconds int
	countdownTick    time.Duration
	runningTick      time.Duration
	finalCueSeconds  int
	onComplete       func(Result)
	onCue            func(Cue)

	mu      sync.Mutex
	snap    Snapshot
	session SessionClock
	tickGen uint64
	subs    map[int]chan Snapshot
	nextSub int
	effects []func()
	closed  bool
}

// New creates an engine in the Idle phase.
func New(clk clock.Clock, log *slog.Logger, opts ...Option) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		clock:            clk,
		log:              log,
		scheduler:        NewScheduler(clk),
		countdownSeconds: DefaultCountdownSeconds,
		countdownTick:    DefaultCountdownTick,
		runningTick:      DefaultRunningTick,
		finalCueSeconds:  DefaultFinalCueSeconds,
		snap:             Snapshot{Phase: Idle()},
		subs:             make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configure loads plan and moves to Ready. It is accepted from Idle, Ready
// and Completed; during an active session it returns ErrSessionActive and
// changes nothing.
func (e *Engine) Configure(plan models.WorkoutPlan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	e.mu.Lock()
	defer e.unlock()

	switch e.snap.Phase.Kind() {
	case PhaseCountdown, PhaseRunning, PhasePaused:
		return ErrSessionActive
	}

	e.snap = Snapshot{Plan: plan.Clone()}
	e.session.Reset()
	e.setPhaseLocked(Ready())
	e.publishLocked()
	return nil
}

// Start begins the countdown from Ready or resumes from Paused. Any other
// phase ignores it.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.unlock()

	if e.closed {
		return
	}

	switch e.snap.Phase.Kind() {
	case PhaseReady:
		e.beginCountdownLocked()
	case PhasePaused:
		e.resumeLocked()
	}
}

// Pause freezes a running session.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.unlock()

	if !e.snap.Phase.Is(PhaseRunning) {
		return
	}

	// Fold in the time since the last tick before freezing.
	e.advanceLocked(e.clock.Now())
	if !e.snap.Phase.Is(PhaseRunning) {
		return
	}

	e.cancelTicksLocked()
	e.setPhaseLocked(Paused())
	e.publishLocked()
}

// Stop abandons the session and returns to Ready with the plan kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.unlock()

	switch e.snap.Phase.Kind() {
	case PhaseCountdown, PhaseRunning, PhasePaused, PhaseCompleted:
	default:
		return
	}

	e.cancelTicksLocked()
	e.session.Reset()
	e.snap.ElapsedSeconds = 0
	e.snap.CurrentRound = 0
	e.snap.CurrentIntervalIndex = 0
	e.setPhaseLocked(Ready())
	e.publishLocked()
}

// Reset is an alias of Stop.
func (e *Engine) Reset() {
	e.Stop()
}

// AddRound records a finished round for AMRAP and For Time sessions while
// running.
func (e *Engine) AddRound() {
	e.mu.Lock()
	defer e.unlock()

	if !e.snap.Phase.Is(PhaseRunning) || !e.snap.Plan.Mode.TracksRoundsManually() {
		return
	}
	e.snap.CurrentRound++
	e.publishLocked()
}

// Increment bumps the count of a Round Counter session.
func (e *Engine) Increment() {
	e.mu.Lock()
	defer e.unlock()

	if e.snap.Plan.Mode != models.ModeCounter {
		return
	}
	if !e.snap.Phase.Is(PhaseRunning) && !e.snap.Phase.Is(PhasePaused) {
		return
	}
	e.snap.CurrentRound++
	e.publishLocked()
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe returns a channel that receives the current snapshot at once
// and then every change. A subscriber that falls behind sees only the
// newest snapshot; the engine never blocks on it. Call cancel to release
// the subscription.
func (e *Engine) Subscribe(buffer int) (snapshots <-chan Snapshot, cancel func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		close(ch)
		return ch, func() {}
	}

	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	offer(ch, e.snapshotLocked())

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
}

// Close stops ticking and closes every subscriber channel.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.cancelTicksLocked()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.unlock()

	if gen != e.tickGen || e.closed {
		return
	}

	now := e.clock.Now()
	switch e.snap.Phase.Kind() {
	case PhaseCountdown:
		count, _ := e.snap.Phase.Count()
		if count <= 1 {
			e.beginRunningLocked(now)
			return
		}
		e.setPhaseLocked(Countdown(count - 1))
		e.cueLocked(CueCountdown, count-1)
		e.publishLocked()
	case PhaseRunning:
		e.advanceLocked(now)
	}
}

func (e *Engine) beginCountdownLocked() {
	if e.countdownSeconds <= 0 {
		e.beginRunningLocked(e.clock.Now())
		return
	}
	e.setPhaseLocked(Countdown(e.countdownSeconds))
	e.cueLocked(CueCountdown, e.countdownSeconds)
	e.publishLocked()
	e.tickGen = e.scheduler.Start(e.countdownTick, e.tick)
}

func (e *Engine) beginRunningLocked(now time.Time) {
	e.session.Reset()
	e.session.Start(now)
	e.snap.ElapsedSeconds = 0
	e.snap.CurrentRound = initialRound(e.snap.Plan.Mode)
	e.snap.CurrentIntervalIndex = 0
	e.setPhaseLocked(Running())
	e.cueLocked(CueGo, 0)
	e.publishLocked()
	e.tickGen = e.scheduler.Start(e.runningTick, e.tick)
}

func (e *Engine) resumeLocked() {
	e.session.Resume(e.snap.ElapsedSeconds, e.clock.Now())
	e.setPhaseLocked(Running())
	e.publishLocked()
	e.tickGen = e.scheduler.Start(e.runningTick, e.tick)
}

// advanceLocked recomputes elapsed time and mode progress. Elapsed is
// clamped so it never decreases within a run.
func (e *Engine) advanceLocked(now time.Time) {
	prev := e.snap
	elapsed := max(e.session.ElapsedSeconds(now), prev.ElapsedSeconds)

	p := evaluate(e.snap.Plan, elapsed, prev.CurrentRound, prev.CurrentIntervalIndex)
	e.snap.ElapsedSeconds = elapsed
	if p.done {
		e.completeLocked(now)
		return
	}
	e.snap.CurrentRound = p.round
	e.snap.CurrentIntervalIndex = p.interval

	changed := elapsed != prev.ElapsedSeconds ||
		p.round != prev.CurrentRound ||
		p.interval != prev.CurrentIntervalIndex
	if !changed {
		return
	}
	e.progressCuesLocked(prev)
	e.publishLocked()
}

func (e *Engine) progressCuesLocked(prev Snapshot) {
	cur := e.snap
	switch {
	case cur.CurrentRound != prev.CurrentRound && !cur.Plan.Mode.TracksRoundsManually():
		e.cueLocked(CueRoundStarted, 0)
	case cur.CurrentIntervalIndex != prev.CurrentIntervalIndex:
		e.cueLocked(CueIntervalStarted, 0)
	}

	if cur.ElapsedSeconds == prev.ElapsedSeconds || e.finalCueSeconds == 0 {
		return
	}
	if remaining, ok := cur.RemainingSeconds(); ok && remaining > 0 && remaining <= e.finalCueSeconds {
		e.cueLocked(CueFinalSeconds, remaining)
	}
}

func (e *Engine) completeLocked(now time.Time) {
	e.cancelTicksLocked()
	e.setPhaseLocked(Completed())
	e.cueLocked(CueCompleted, 0)
	e.publishLocked()

	if e.onComplete != nil {
		handler := e.onComplete
		result := e.snap.Result(now)
		e.effects = append(e.effects, func() { handler(result) })
	}
}

func (e *Engine) cancelTicksLocked() {
	e.scheduler.Cancel()
	e.tickGen = 0
}

func (e *Engine) setPhaseLocked(next Phase) {
	prev := e.snap.Phase
	e.snap.Phase = next
	if prev.Is(PhaseCountdown) && next.Is(PhaseCountdown) {
		e.log.Debug("countdown", "count", next.String())
		return
	}
	e.log.Info("phase changed",
		"from", prev.String(),
		"to", next.String(),
		"mode", string(e.snap.Plan.Mode),
		"elapsed", e.snap.ElapsedSeconds,
		"round", e.snap.CurrentRound)
}

func (e *Engine) cueLocked(kind CueKind, remaining int) {
	cue := Cue{
		Kind:          kind,
		Round:         e.snap.CurrentRound,
		IntervalIndex: e.snap.CurrentIntervalIndex,
		Remaining:     remaining,
		Sound:         e.snap.Plan.SoundEnabled,
		Vibration:     e.snap.Plan.VibrationEnabled,
	}
	e.log.Debug("cue", "kind", kind.String(), "round", cue.Round, "interval", cue.IntervalIndex, "remaining", remaining)
	if e.onCue == nil {
		return
	}
	handler := e.onCue
	e.effects = append(e.effects, func() { handler(cue) })
}

func (e *Engine) snapshotLocked() Snapshot {
	s := e.snap
	s.Plan = s.Plan.Clone()
	return s
}

func (e *Engine) publishLocked() {
	s := e.snapshotLocked()
	for _, ch := range e.subs {
		offer(ch, s)
	}
}

// unlock releases the mutex and then runs the handlers queued while it was
// held.
func (e *Engine) unlock() {
	effects := e.effects
	e.effects = nil
	e.mu.Unlock()
	for _, fn := range effects {
		fn()
	}
}

// offer delivers s without blocking, replacing the oldest queued snapshot
// when ch is full. Only the engine sends, always under its mutex.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
