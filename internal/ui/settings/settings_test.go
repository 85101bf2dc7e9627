package settings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/wodtimer/internal/config"
	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

func newTestSettings(t *testing.T) (Model, *storage.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.DataDir = dir
	path := filepath.Join(dir, "settings.yaml")
	return New(context.Background(), store, path, cfg), store, path
}

func send(m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var backspace = tea.KeyMsg{Type: tea.KeyBackspace}

func TestSaveSettings(t *testing.T) {
	m, _, path := newTestSettings(t)

	// Countdown 3 -> 5, skip the cue window, refresh 100 -> 250.
	m, _ = send(m, backspace, runes("5"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(m, backspace, backspace, backspace, runes("250"))
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	m, cmd := send(m, runes("s"))
	require.NotNil(t, cmd)
	require.True(t, m.Saved())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.CountdownSeconds)
	assert.Equal(t, 10, loaded.FinalCueSeconds)
	assert.Equal(t, 250*time.Millisecond, loaded.RunningTick())
	assert.False(t, loaded.SoundEnabled)
	assert.True(t, loaded.VibrationEnabled)
	assert.Equal(t, loaded, m.Config())
}

func TestSaveRejectsOutOfRange(t *testing.T) {
	m, _, path := newTestSettings(t)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = send(m, backspace, backspace, backspace, runes("0"))
	m, cmd := send(m, runes("s"))
	assert.Nil(t, cmd)
	assert.False(t, m.Saved())
	assert.Contains(t, m.errorMsg, "running tick")
	assert.NoFileExists(t, path)
}

func TestResetNeedsConfirmation(t *testing.T) {
	m, store, _ := newTestSettings(t)
	ctx := context.Background()
	_, err := store.SaveHistory(ctx, models.NewHistoryRecord(models.DefaultPlan(models.ModeEMOM), 600, 10, time.Now()))
	require.NoError(t, err)

	m, _ = send(m, runes("r"))
	require.True(t, m.confirmReset)
	m, _ = send(m, runes("b"))
	assert.False(t, m.confirmReset)

	all, err := store.GetAllHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	m, _ = send(m, runes("r"), runes("r"))
	assert.True(t, m.reset)
	all, err = store.GetAllHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
