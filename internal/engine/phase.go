package engine

import "fmt"

type PhaseKind int

const (
	PhaseIdle PhaseKind = iota
	PhaseReady
	PhaseCountdown
	PhaseRunning
	PhasePaused
	PhaseCompleted
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseIdle:
		return "idle"
	case PhaseReady:
		return "ready"
	case PhaseCountdown:
		return "countdown"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Phase is the engine's state-machine variant. Exactly one kind is active;
// only Countdown carries data.
type Phase struct {
	kind  PhaseKind
	count int
}

func Idle() Phase      { return Phase{kind: PhaseIdle} }
func Ready() Phase     { return Phase{kind: PhaseReady} }
func Running() Phase   { return Phase{kind: PhaseRunning} }
func Paused() Phase    { return Phase{kind: PhasePaused} }
func Completed() Phase { return Phase{kind: PhaseCompleted} }

func Countdown(count int) Phase {
	return Phase{kind: PhaseCountdown, count: count}
}

func (p Phase) Kind() PhaseKind { return p.kind }

func (p Phase) Is(kind PhaseKind) bool { return p.kind == kind }

// Count returns the remaining countdown seconds; ok is false outside
// Countdown.
func (p Phase) Count() (count int, ok bool) {
	if p.kind != PhaseCountdown {
		return 0, false
	}
	return p.count, true
}

func (p Phase) String() string {
	if p.kind == PhaseCountdown {
		return fmt.Sprintf("countdown(%d)", p.count)
	}
	return p.kind.String()
}
