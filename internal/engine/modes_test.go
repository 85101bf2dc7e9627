package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adibhanna/wodtimer/internal/models"
)

func TestEvaluate(t *testing.T) {
	tabata := customTabata(2)

	tests := []struct {
		name    string
		plan    models.WorkoutPlan
		elapsed int
		round   int
		want    progress
	}{
		{"amrap running", amrap(60), 59, 4, progress{round: 4}},
		{"amrap done", amrap(60), 60, 4, progress{round: 4, done: true}},
		{"amrap zero length", amrap(0), 0, 0, progress{done: true}},
		{"emom first minute", models.WorkoutPlan{Mode: models.ModeEMOM, EmomRounds: 3}, 59, 1, progress{round: 1}},
		{"emom second minute", models.WorkoutPlan{Mode: models.ModeEMOM, EmomRounds: 3}, 60, 1, progress{round: 2}},
		{"emom done keeps round", models.WorkoutPlan{Mode: models.ModeEMOM, EmomRounds: 3}, 180, 3, progress{round: 3, done: true}},
		{"for time uncapped", models.WorkoutPlan{Mode: models.ModeForTime, ForTimeCapSeconds: 10}, 5000, 2, progress{round: 2}},
		{"for time capped", models.WorkoutPlan{Mode: models.ModeForTime, ForTimeHasCap: true, ForTimeCapSeconds: 10}, 10, 2, progress{round: 2, done: true}},
		{"custom work", tabata, 39, 1, progress{round: 1, interval: 0}},
		{"custom rest", tabata, 40, 1, progress{round: 1, interval: 1}},
		{"custom next round", tabata, 60, 1, progress{round: 2, interval: 0}},
		{"custom done", tabata, 120, 2, progress{round: 2, done: true}},
		{"custom empty", models.WorkoutPlan{Mode: models.ModeCustom, CustomTotalRounds: 3}, 0, 1, progress{round: 1, done: true}},
		{"counter never ends", models.WorkoutPlan{Mode: models.ModeCounter}, 99999, 7, progress{round: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate(tt.plan, tt.elapsed, tt.round, 0))
		})
	}
}

func TestInitialRound(t *testing.T) {
	assert.Equal(t, 0, initialRound(models.ModeAMRAP))
	assert.Equal(t, 0, initialRound(models.ModeForTime))
	assert.Equal(t, 0, initialRound(models.ModeCounter))
	assert.Equal(t, 1, initialRound(models.ModeEMOM))
	assert.Equal(t, 1, initialRound(models.ModeCustom))
}

func TestSessionClock(t *testing.T) {
	var c SessionClock
	assert.False(t, c.Started())
	assert.Zero(t, c.ElapsedSeconds(epoch.Add(time.Hour)))

	assert.True(t, c.Start(epoch))
	assert.False(t, c.Start(epoch.Add(time.Minute)), "second start is refused")

	assert.Equal(t, 0, c.ElapsedSeconds(epoch.Add(999*time.Millisecond)))
	assert.Equal(t, 1, c.ElapsedSeconds(epoch.Add(time.Second)))
	assert.Equal(t, 90, c.ElapsedSeconds(epoch.Add(90*time.Second+500*time.Millisecond)))
	assert.Zero(t, c.ElapsedSeconds(epoch.Add(-time.Second)))

	resumeAt := epoch.Add(time.Hour)
	c.Resume(42, resumeAt)
	assert.Equal(t, 42, c.ElapsedSeconds(resumeAt))
	assert.Equal(t, 43, c.ElapsedSeconds(resumeAt.Add(time.Second)))

	c.Reset()
	assert.False(t, c.Started())
	assert.Zero(t, c.ElapsedSeconds(resumeAt))
}

func TestPhase(t *testing.T) {
	p := Countdown(3)
	assert.True(t, p.Is(PhaseCountdown))
	count, ok := p.Count()
	assert.True(t, ok)
	assert.Equal(t, 3, count)
	assert.Equal(t, "countdown(3)", p.String())

	_, ok = Running().Count()
	assert.False(t, ok)
	assert.Equal(t, "running", Running().String())
	assert.NotEqual(t, Countdown(2), Countdown(3))
	assert.Equal(t, Paused(), Paused())
}
