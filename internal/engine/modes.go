package engine

import "github.com/adibhanna/wodtimer/internal/models"

type progress struct {
	round    int
	interval int
	done     bool
}

// evaluate derives round/interval progress for elapsed seconds into a
// session. Progress is recomputed from elapsed on every call, so a missed
// tick heals on the next one. When done is set, round and interval keep
// the values passed in.
func evaluate(plan models.WorkoutPlan, elapsed, round, interval int) progress {
	p := progress{round: round, interval: interval}

	switch plan.Mode {
	case models.ModeAMRAP:
		p.done = elapsed >= plan.AmrapDurationSeconds

	case models.ModeEMOM:
		current := elapsed/models.EmomRoundSeconds + 1
		if current > plan.EmomRounds {
			p.done = true
			return p
		}
		p.round = current

	case models.ModeForTime:
		p.done = plan.ForTimeHasCap && elapsed >= plan.ForTimeCapSeconds

	case models.ModeCustom:
		roundSeconds := plan.RoundSeconds()
		if len(plan.CustomIntervals) == 0 || roundSeconds <= 0 {
			p.done = true
			return p
		}
		if elapsed >= roundSeconds*plan.CustomTotalRounds {
			p.done = true
			return p
		}
		p.round = elapsed/roundSeconds + 1
		if idx, _ := plan.IntervalAt(elapsed % roundSeconds); idx >= 0 {
			p.interval = idx
		}

	case models.ModeCounter:
		// Counted by hand through Increment.
	}

	return p
}

// initialRound is the round shown when Running begins.
func initialRound(mode models.WorkoutMode) int {
	if mode.TracksRoundsManually() || mode == models.ModeCounter {
		return 0
	}
	return 1
}
