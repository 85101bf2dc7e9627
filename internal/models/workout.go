package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlan is wrapped by every WorkoutPlan validation failure.
var ErrInvalidPlan = errors.New("invalid workout plan")

type WorkoutMode string

const (
	ModeAMRAP   WorkoutMode = "AMRAP"
	ModeEMOM    WorkoutMode = "EMOM"
	ModeForTime WorkoutMode = "FOR_TIME"
	ModeCustom  WorkoutMode = "CUSTOM"
	ModeCounter WorkoutMode = "COUNTER"
)

// Modes lists every workout mode in menu order.
var Modes = []WorkoutMode{ModeAMRAP, ModeEMOM, ModeForTime, ModeCustom, ModeCounter}

func ParseWorkoutMode(s string) (WorkoutMode, error) {
	mode := WorkoutMode(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range Modes {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown workout mode %q", s)
}

func (m WorkoutMode) Label() string {
	switch m {
	case ModeAMRAP:
		return "AMRAP"
	case ModeEMOM:
		return "EMOM"
	case ModeForTime:
		return "For Time"
	case ModeCustom:
		return "Custom Intervals"
	case ModeCounter:
		return "Round Counter"
	default:
		return string(m)
	}
}

// TracksRoundsManually reports whether rounds only move through AddRound.
func (m WorkoutMode) TracksRoundsManually() bool {
	return m == ModeAMRAP || m == ModeForTime
}

type IntervalKind string

const (
	IntervalWork IntervalKind = "WORK"
	IntervalRest IntervalKind = "REST"
)

type CustomInterval struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	DurationSeconds int          `json:"duration_seconds"`
	Kind            IntervalKind `json:"kind"`
	Order           int          `json:"order"`
}

const (
	EmomRoundSeconds = 60

	DefaultAmrapMinutes   = 20
	DefaultEmomRounds     = 10
	DefaultTimeCapMinutes = 30
	DefaultWorkSeconds    = 40
	DefaultRestSeconds    = 20
	DefaultCustomRounds   = 8
)

// WorkoutPlan describes one configured session. It is treated as an
// immutable value: the With* helpers return modified copies.
type WorkoutPlan struct {
	Mode WorkoutMode `json:"mode"`

	AmrapDurationSeconds int `json:"amrap_duration_seconds"`

	EmomRounds int `json:"emom_rounds"`

	ForTimeHasCap     bool `json:"for_time_has_cap"`
	ForTimeCapSeconds int  `json:"for_time_cap_seconds"`

	CustomTotalRounds int              `json:"custom_total_rounds"`
	CustomIntervals   []CustomInterval `json:"custom_intervals"`

	SoundEnabled     bool `json:"sound_enabled"`
	VibrationEnabled bool `json:"vibration_enabled"`
}

func DefaultPlan(mode WorkoutMode) WorkoutPlan {
	plan := WorkoutPlan{Mode: mode, SoundEnabled: true, VibrationEnabled: true}
	switch mode {
	case ModeAMRAP:
		plan.AmrapDurationSeconds = DefaultAmrapMinutes * 60
	case ModeEMOM:
		plan.EmomRounds = DefaultEmomRounds
	case ModeForTime:
		plan.ForTimeHasCap = true
		plan.ForTimeCapSeconds = DefaultTimeCapMinutes * 60
	case ModeCustom:
		plan.CustomTotalRounds = DefaultCustomRounds
		plan = plan.
			WithInterval(CustomInterval{Name: "Work", DurationSeconds: DefaultWorkSeconds, Kind: IntervalWork}).
			WithInterval(CustomInterval{Name: "Rest", DurationSeconds: DefaultRestSeconds, Kind: IntervalRest})
	}
	return plan
}

// Clone returns a copy that shares no interval storage with p.
func (p WorkoutPlan) Clone() WorkoutPlan {
	if p.CustomIntervals != nil {
		intervals := make([]CustomInterval, len(p.CustomIntervals))
		copy(intervals, p.CustomIntervals)
		p.CustomIntervals = intervals
	}
	return p
}

// WithInterval appends an interval, assigning it the next order slot.
func (p WorkoutPlan) WithInterval(interval CustomInterval) WorkoutPlan {
	out := p.Clone()
	interval.Order = len(out.CustomIntervals)
	if interval.ID == 0 {
		interval.ID = nextIntervalID(out.CustomIntervals)
	}
	out.CustomIntervals = append(out.CustomIntervals, interval)
	return out
}

// WithoutInterval removes the interval at index and renumbers the rest.
// Out of range indexes return the plan unchanged.
func (p WorkoutPlan) WithoutInterval(index int) WorkoutPlan {
	if index < 0 || index >= len(p.CustomIntervals) {
		return p
	}
	out := p.Clone()
	out.CustomIntervals = append(out.CustomIntervals[:index], out.CustomIntervals[index+1:]...)
	for i := range out.CustomIntervals {
		out.CustomIntervals[i].Order = i
	}
	return out
}

func nextIntervalID(intervals []CustomInterval) int {
	id := 0
	for _, iv := range intervals {
		if iv.ID > id {
			id = iv.ID
		}
	}
	return id + 1
}

// Validate checks the fields the plan's mode consults. Fields belonging to
// other modes are ignored, so a plan may carry leftovers harmlessly.
func (p WorkoutPlan) Validate() error {
	switch p.Mode {
	case ModeAMRAP:
		if p.AmrapDurationSeconds < 0 {
			return fmt.Errorf("%w: amrap duration is negative", ErrInvalidPlan)
		}
	case ModeEMOM:
		if p.EmomRounds < 0 {
			return fmt.Errorf("%w: emom rounds is negative", ErrInvalidPlan)
		}
	case ModeForTime:
		if p.ForTimeCapSeconds < 0 {
			return fmt.Errorf("%w: time cap is negative", ErrInvalidPlan)
		}
	case ModeCustom:
		if p.CustomTotalRounds < 0 {
			return fmt.Errorf("%w: custom rounds is negative", ErrInvalidPlan)
		}
		for i, iv := range p.CustomIntervals {
			if iv.DurationSeconds < 0 {
				return fmt.Errorf("%w: interval %d has negative duration", ErrInvalidPlan, i)
			}
			if iv.Order != i {
				return fmt.Errorf("%w: interval %d has order %d", ErrInvalidPlan, i, iv.Order)
			}
		}
	case ModeCounter:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidPlan, p.Mode)
	}
	return nil
}

// RoundSeconds is the length of one round: 60 for EMOM, the interval sum
// for CUSTOM and zero for modes without fixed rounds.
func (p WorkoutPlan) RoundSeconds() int {
	switch p.Mode {
	case ModeEMOM:
		return EmomRoundSeconds
	case ModeCustom:
		total := 0
		for _, iv := range p.CustomIntervals {
			total += iv.DurationSeconds
		}
		return total
	default:
		return 0
	}
}

// TotalSeconds returns the planned session length. The bool is false for
// open-ended sessions (uncapped For Time, Counter).
func (p WorkoutPlan) TotalSeconds() (int, bool) {
	switch p.Mode {
	case ModeAMRAP:
		return p.AmrapDurationSeconds, true
	case ModeEMOM:
		return p.EmomRounds * EmomRoundSeconds, true
	case ModeForTime:
		if p.ForTimeHasCap {
			return p.ForTimeCapSeconds, true
		}
		return 0, false
	case ModeCustom:
		return p.RoundSeconds() * p.CustomTotalRounds, true
	default:
		return 0, false
	}
}

// IntervalAt returns the index of the interval covering timeInRound and the
// second at which that interval starts. A boundary second belongs to the
// interval beginning there. It reports -1 when no interval covers it.
func (p WorkoutPlan) IntervalAt(timeInRound int) (index, startsAt int) {
	accumulated := 0
	for i, iv := range p.CustomIntervals {
		if timeInRound < accumulated+iv.DurationSeconds {
			return i, accumulated
		}
		accumulated += iv.DurationSeconds
	}
	return -1, accumulated
}

// Describe renders a one-line summary such as "EMOM · 10 rounds".
func (p WorkoutPlan) Describe() string {
	switch p.Mode {
	case ModeAMRAP:
		return fmt.Sprintf("AMRAP · %s", FormatTime(p.AmrapDurationSeconds))
	case ModeEMOM:
		return fmt.Sprintf("EMOM · %d rounds", p.EmomRounds)
	case ModeForTime:
		if p.ForTimeHasCap {
			return fmt.Sprintf("For Time · cap %s", FormatTime(p.ForTimeCapSeconds))
		}
		return "For Time · no cap"
	case ModeCustom:
		parts := make([]string, 0, len(p.CustomIntervals))
		for _, iv := range p.CustomIntervals {
			parts = append(parts, fmt.Sprintf("%s %ds", iv.Name, iv.DurationSeconds))
		}
		return fmt.Sprintf("Custom · %d × [%s]", p.CustomTotalRounds, strings.Join(parts, ", "))
	case ModeCounter:
		return "Round Counter"
	default:
		return string(p.Mode)
	}
}
