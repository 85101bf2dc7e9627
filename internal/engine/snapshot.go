package engine

import (
	"time"

	"github.com/adibhanna/wodtimer/internal/models"
)

// Snapshot is the externally observable state of a session at one instant.
// Consumers must treat it as read-only.
type Snapshot struct {
	Plan                 models.WorkoutPlan
	Phase                Phase
	ElapsedSeconds       int
	CurrentRound         int
	CurrentIntervalIndex int
}

// RemainingSeconds is the time left in a bounded session.
func (s Snapshot) RemainingSeconds() (int, bool) {
	total, ok := s.Plan.TotalSeconds()
	if !ok {
		return 0, false
	}
	return max(total-s.ElapsedSeconds, 0), true
}

// RoundRemainingSeconds is the time left in the current EMOM minute or
// CUSTOM round.
func (s Snapshot) RoundRemainingSeconds() (int, bool) {
	round := s.Plan.RoundSeconds()
	if round <= 0 {
		return 0, false
	}
	return round - s.ElapsedSeconds%round, true
}

// IntervalRemainingSeconds is the time left in the current CUSTOM interval.
func (s Snapshot) IntervalRemainingSeconds() (int, bool) {
	round := s.Plan.RoundSeconds()
	if s.Plan.Mode != models.ModeCustom || round <= 0 {
		return 0, false
	}
	idx, startsAt := s.Plan.IntervalAt(s.ElapsedSeconds % round)
	if idx < 0 {
		return 0, false
	}
	return startsAt + s.Plan.CustomIntervals[idx].DurationSeconds - s.ElapsedSeconds%round, true
}

// CurrentInterval returns the CUSTOM interval the session is in.
func (s Snapshot) CurrentInterval() (models.CustomInterval, bool) {
	if s.Plan.Mode != models.ModeCustom {
		return models.CustomInterval{}, false
	}
	if s.CurrentIntervalIndex < 0 || s.CurrentIntervalIndex >= len(s.Plan.CustomIntervals) {
		return models.CustomInterval{}, false
	}
	return s.Plan.CustomIntervals[s.CurrentIntervalIndex], true
}

// Result is the finalized outcome handed to the completion handler.
type Result struct {
	Plan           models.WorkoutPlan
	ElapsedSeconds int
	CurrentRound   int
	CompletedAt    time.Time
}

func (s Snapshot) Result(at time.Time) Result {
	return Result{
		Plan:           s.Plan.Clone(),
		ElapsedSeconds: s.ElapsedSeconds,
		CurrentRound:   s.CurrentRound,
		CompletedAt:    at,
	}
}

// HistoryRecord converts the result into an unsaved history record.
func (r Result) HistoryRecord() models.HistoryRecord {
	return models.NewHistoryRecord(r.Plan, r.ElapsedSeconds, r.CurrentRound, r.CompletedAt)
}

type CueKind int

const (
	CueCountdown CueKind = iota
	CueGo
	CueRoundStarted
	CueIntervalStarted
	CueFinalSeconds
	CueCompleted
)

func (k CueKind) String() string {
	switch k {
	case CueCountdown:
		return "countdown"
	case CueGo:
		return "go"
	case CueRoundStarted:
		return "round_started"
	case CueIntervalStarted:
		return "interval_started"
	case CueFinalSeconds:
		return "final_seconds"
	case CueCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Cue signals that a sound or vibration should fire. Sound and Vibration
// are copied from the plan; the engine does not act on them.
type Cue struct {
	Kind          CueKind
	Round         int
	IntervalIndex int
	Remaining     int
	Sound         bool
	Vibration     bool
}
