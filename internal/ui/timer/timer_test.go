package timer

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/wodtimer/internal/clock"
	"github.com/adibhanna/wodtimer/internal/engine"
	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

var start = time.Date(2024, time.March, 6, 7, 0, 0, 0, time.Local)

func newTestModel(t *testing.T, plan models.WorkoutPlan, opts ...engine.Option) (Model, *clock.Fake, *storage.Storage) {
	t.Helper()
	clk := clock.NewFake(start)
	store, err := storage.Open(t.TempDir(), storage.WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m, err := New(context.Background(), store, clk, nil, plan, "Cindy", opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), clk, store
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewRejectsInvalidPlan(t *testing.T) {
	clk := clock.NewFake(start)
	_, err := New(context.Background(), nil, clk, nil, models.WorkoutPlan{Mode: "YOGA"}, "")
	assert.ErrorIs(t, err, models.ErrInvalidPlan)
}

func TestKeysDriveEngine(t *testing.T) {
	m, clk, _ := newTestModel(t, models.WorkoutPlan{Mode: models.ModeAMRAP, AmrapDurationSeconds: 600})

	m, _ = press(t, m, runes("s"))
	assert.Equal(t, engine.Countdown(3), m.engine.Snapshot().Phase)

	clk.Advance(3 * time.Second)
	assert.Equal(t, engine.Running(), m.engine.Snapshot().Phase)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = press(t, m, runes("+"))
	assert.Equal(t, 2, m.engine.Snapshot().CurrentRound)

	m, _ = press(t, m, runes("p"))
	assert.Equal(t, engine.Paused(), m.engine.Snapshot().Phase)

	m, _ = press(t, m, runes("s"))
	assert.Equal(t, engine.Running(), m.engine.Snapshot().Phase)

	m, _ = press(t, m, runes("x"))
	assert.Equal(t, engine.Ready(), m.engine.Snapshot().Phase)
}

func TestSnapshotMessagesUpdateView(t *testing.T) {
	m, clk, _ := newTestModel(t, models.WorkoutPlan{Mode: models.ModeAMRAP, AmrapDurationSeconds: 600}, engine.WithCountdown(0))

	m, _ = press(t, m, runes("s"))
	clk.Advance(42 * time.Second)

	msg := m.waitForSnapshot()()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	assert.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, 42, m.Snapshot().ElapsedSeconds)
	assert.Contains(t, m.View(), "09:18")
}

func TestCompletionShowsResultAndSaves(t *testing.T) {
	m, clk, store := newTestModel(t, models.WorkoutPlan{Mode: models.ModeAMRAP, AmrapDurationSeconds: 5}, engine.WithCountdown(0))

	m, _ = press(t, m, runes("s"))
	m, _ = press(t, m, runes(" "))
	clk.Advance(5 * time.Second)

	updated, _ := m.Update(m.waitForResult()())
	m = updated.(Model)
	result, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, 5, result.ElapsedSeconds)
	assert.Equal(t, 1, result.CurrentRound)
	assert.Contains(t, m.View(), "WORKOUT COMPLETE")

	// Letters go to the notes field, not the timer bindings.
	m, _ = press(t, m, runes("quick"))
	assert.Equal(t, engine.Completed(), m.engine.Snapshot().Phase)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	assert.True(t, m.Saved())

	history, err := store.GetAllHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Cindy", history[0].WodName)
	assert.Equal(t, "quick", history[0].Notes)
	assert.Equal(t, 1, history[0].RoundsCompleted)
	assert.Equal(t, models.ModeAMRAP, history[0].Mode)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	_, ok = m.Result()
	assert.False(t, ok)
	assert.Equal(t, engine.Ready(), m.engine.Snapshot().Phase)
}

func TestFinishEarlyRecordsCounter(t *testing.T) {
	m, clk, _ := newTestModel(t, models.WorkoutPlan{Mode: models.ModeCounter}, engine.WithCountdown(0))

	m, _ = press(t, m, runes("f"))
	_, ok := m.Result()
	assert.False(t, ok, "nothing to finish before starting")

	m, _ = press(t, m, runes("s"))
	for i := 0; i < 4; i++ {
		m, _ = press(t, m, runes(" "))
	}
	clk.Advance(90 * time.Second)

	m, _ = press(t, m, runes("f"))
	result, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, 4, result.CurrentRound)
	assert.Equal(t, 90, result.ElapsedSeconds)
	assert.Equal(t, engine.Ready(), m.engine.Snapshot().Phase)
}

func TestBackStopsSession(t *testing.T) {
	m, _, _ := newTestModel(t, models.DefaultPlan(models.ModeEMOM))

	m, _ = press(t, m, runes("s"))
	m, cmd := press(t, m, runes("b"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, engine.Ready(), m.engine.Snapshot().Phase)
}

func TestCueText(t *testing.T) {
	assert.Equal(t, "3...", cueText(engine.Cue{Kind: engine.CueCountdown, Remaining: 3}))
	assert.Equal(t, "GO!", cueText(engine.Cue{Kind: engine.CueGo}))
	assert.Equal(t, "🔔 Round 4", cueText(engine.Cue{Kind: engine.CueRoundStarted, Round: 4, Sound: true}))
	assert.Equal(t, "🔔 📳 10 seconds left", cueText(engine.Cue{Kind: engine.CueFinalSeconds, Remaining: 10, Sound: true, Vibration: true}))
	assert.Empty(t, cueText(engine.Cue{Kind: engine.CueKind(99), Sound: true}))
}

func TestMainDisplay(t *testing.T) {
	tabata := models.DefaultPlan(models.ModeCustom)

	tests := []struct {
		name string
		snap engine.Snapshot
		want string
	}{
		{"countdown", engine.Snapshot{Phase: engine.Countdown(2), Plan: tabata}, "   2   "},
		{"amrap remaining", engine.Snapshot{Phase: engine.Running(), Plan: models.DefaultPlan(models.ModeAMRAP), ElapsedSeconds: 65}, "18:55"},
		{"emom minute", engine.Snapshot{Phase: engine.Running(), Plan: models.DefaultPlan(models.ModeEMOM), ElapsedSeconds: 125, CurrentRound: 3}, "00:55"},
		{"custom interval", engine.Snapshot{Phase: engine.Running(), Plan: tabata, ElapsedSeconds: 45, CurrentRound: 1, CurrentIntervalIndex: 1}, "00:15"},
		{"for time uncapped", engine.Snapshot{Phase: engine.Running(), Plan: models.WorkoutPlan{Mode: models.ModeForTime}, ElapsedSeconds: 3725}, "01:02:05"},
		{"counter", engine.Snapshot{Phase: engine.Paused(), Plan: models.WorkoutPlan{Mode: models.ModeCounter}, CurrentRound: 12}, "12"},
		{"completed", engine.Snapshot{Phase: engine.Completed(), Plan: tabata}, "DONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mainDisplay(tt.snap))
		})
	}
}
