package timer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/wodtimer/internal/clock"
	"github.com/adibhanna/wodtimer/internal/engine"
	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

type snapshotMsg engine.Snapshot

type cueMsg engine.Cue

type resultMsg engine.Result

type savedMsg struct {
	record models.HistoryRecord
	err    error
}

type Model struct {
	ctx         context.Context
	engine      *engine.Engine
	storage     *storage.Storage
	clock       clock.Clock
	log         *slog.Logger
	snapshots   <-chan engine.Snapshot
	unsubscribe func()
	cues        chan engine.Cue
	results     chan engine.Result
	done        chan struct{}

	wodName  string
	snap     engine.Snapshot
	cue      string
	result   *engine.Result
	notes    textinput.Model
	saved    bool
	errorMsg string
	progress progress.Model
	width    int
	height   int
}

// New configures an engine with plan and wires its snapshots, cues and
// completion result into the bubbletea update loop.
func New(ctx context.Context, store *storage.Storage, clk clock.Clock, log *slog.Logger, plan models.WorkoutPlan, wodName string, opts ...engine.Option) (Model, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	cues := make(chan engine.Cue, 16)
	results := make(chan engine.Result, 1)
	opts = append(opts,
		engine.WithCueHandler(func(c engine.Cue) {
			select {
			case cues <- c:
			default:
			}
		}),
		engine.WithCompletionHandler(func(r engine.Result) {
			select {
			case results <- r:
			default:
			}
		}),
	)

	eng := engine.New(clk, log.With("component", "engine"), opts...)
	if err := eng.Configure(plan); err != nil {
		eng.Close()
		return Model{}, err
	}
	snapshots, unsubscribe := eng.Subscribe(1)

	prog := progress.New(progress.WithScaledGradient("#FF7CCB", "#FDFF8C"))
	prog.Width = 60

	notes := textinput.New()
	notes.Placeholder = "How did it go?"
	notes.CharLimit = 200
	notes.Width = 50

	return Model{
		ctx:         ctx,
		engine:      eng,
		storage:     store,
		clock:       clk,
		log:         log,
		snapshots:   snapshots,
		unsubscribe: unsubscribe,
		cues:        cues,
		results:     results,
		done:        make(chan struct{}),
		wodName:     wodName,
		snap:        eng.Snapshot(),
		notes:       notes,
		progress:    prog,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.waitForCue(), m.waitForResult())
}

func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case s, ok := <-m.snapshots:
			if !ok {
				return nil
			}
			return snapshotMsg(s)
		case <-m.done:
			return nil
		}
	}
}

func (m Model) waitForCue() tea.Cmd {
	return func() tea.Msg {
		select {
		case c := <-m.cues:
			return cueMsg(c)
		case <-m.done:
			return nil
		}
	}
}

func (m Model) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-m.results:
			return resultMsg(r)
		case <-m.done:
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-20, 80)
		return m, nil

	case snapshotMsg:
		m.snap = engine.Snapshot(msg)
		return m, m.waitForSnapshot()

	case cueMsg:
		m.cue = cueText(engine.Cue(msg))
		return m, m.waitForCue()

	case resultMsg:
		r := engine.Result(msg)
		return m.showResult(r), m.waitForResult()

	case savedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.saved = true
		m.errorMsg = ""
		m.log.Info("history saved", "id", msg.record.ID, "mode", string(msg.record.Mode))
		return m, nil

	case tea.KeyMsg:
		if m.result != nil {
			return m.updateResult(msg)
		}
		return m.updateSession(msg)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateSession(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start):
		m.engine.Start()
	case key.Matches(msg, keys.Pause):
		m.engine.Pause()
	case key.Matches(msg, keys.Stop):
		m.engine.Stop()
		m.cue = ""
	case key.Matches(msg, keys.Round):
		if m.snap.Plan.Mode == models.ModeCounter {
			m.engine.Increment()
		} else {
			m.engine.AddRound()
		}
	case key.Matches(msg, keys.Finish):
		return m.finishEarly(), nil
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit), key.Matches(msg, keys.ForceQuit):
		m.engine.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Save) && !m.saved:
		return m, m.saveResult()
	case key.Matches(msg, keys.Done), key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, keys.Again) && m.saved:
		m.result = nil
		m.saved = false
		m.notes.Reset()
		m.notes.Blur()
		m.engine.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

// finishEarly records the session as it stands. Used for For Time without a
// cap and the round counter, which never complete on their own.
func (m Model) finishEarly() Model {
	snap := m.engine.Snapshot()
	switch snap.Phase.Kind() {
	case engine.PhaseRunning, engine.PhasePaused:
	default:
		return m
	}
	m.engine.Pause()
	snap = m.engine.Snapshot()
	m.engine.Stop()
	m.log.Info("workout finished early", "mode", string(snap.Plan.Mode), "elapsed", snap.ElapsedSeconds, "round", snap.CurrentRound)
	return m.showResult(snap.Result(m.clock.Now()))
}

func (m Model) showResult(r engine.Result) Model {
	m.result = &r
	m.saved = false
	m.notes.Focus()
	return m
}

func (m Model) saveResult() tea.Cmd {
	rec := m.result.HistoryRecord()
	rec.WodName = m.wodName
	rec.Notes = strings.TrimSpace(m.notes.Value())
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		saved, err := store.SaveHistory(ctx, rec)
		return savedMsg{record: saved, err: err}
	}
}

// Close releases the engine and unblocks pending commands.
func (m Model) Close() {
	m.unsubscribe()
	m.engine.Close()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m Model) Snapshot() engine.Snapshot {
	return m.snap
}

func (m Model) Result() (engine.Result, bool) {
	if m.result == nil {
		return engine.Result{}, false
	}
	return *m.result, true
}

func (m Model) Saved() bool {
	return m.saved
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(2)

	if m.result != nil {
		return containerStyle.Render(m.renderResult())
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(1)

	timerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(phaseColor(m.snap)).
		Padding(2, 4).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginBottom(1)

	cueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4CAF50")).
		MarginBottom(1)

	title := m.snap.Plan.Mode.Label()
	if m.wodName != "" {
		title = m.wodName + " · " + title
	}

	parts := []string{
		titleStyle.Render(title),
		statusStyle.Render(m.snap.Plan.Describe()),
		timerStyle.Render(mainDisplay(m.snap)),
	}
	if info := roundInfo(m.snap); info != "" {
		parts = append(parts, infoStyle.Render(info))
	}
	if percent, ok := completion(m.snap); ok {
		parts = append(parts, m.progress.ViewAs(percent))
	}
	if m.cue != "" {
		parts = append(parts, cueStyle.Render(m.cue))
	}
	parts = append(parts, statusStyle.Render(status(m.snap)), helpView(m.snap))

	return containerStyle.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func (m Model) renderResult() string {
	celebrationStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD700")).
		Align(lipgloss.Center)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginTop(1)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	r := m.result
	lines := []string{
		"",
		"    ╔═══════════════════╗",
		"    ║  WORKOUT COMPLETE ║",
		"    ╚═══════════════════╝",
		"",
		fmt.Sprintf("     %s", r.Plan.Mode.Label()),
		fmt.Sprintf("     Time: %s", models.FormatTimeLong(r.ElapsedSeconds)),
	}
	if r.Plan.Mode != models.ModeCustom || r.CurrentRound > 0 {
		lines = append(lines, fmt.Sprintf("     Rounds: %d", r.CurrentRound))
	}

	content := []string{
		celebrationStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...)),
		labelStyle.Render("Notes:"),
		m.notes.View(),
	}

	switch {
	case m.errorMsg != "":
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(1)
		content = append(content, errorStyle.Render("❌ "+m.errorMsg))
	case m.saved:
		successStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50")).
			Bold(true).
			MarginTop(1)
		content = append(content, successStyle.Render("✅ Saved to history"))
	}

	help := "enter: save to history • esc: done"
	if m.saved {
		help = "ctrl+r: go again • esc: done"
	}
	content = append(content, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Center, content...)
}

func mainDisplay(s engine.Snapshot) string {
	switch s.Phase.Kind() {
	case engine.PhaseCountdown:
		count, _ := s.Phase.Count()
		return fmt.Sprintf("   %d   ", count)
	case engine.PhaseCompleted:
		return "DONE"
	}

	switch s.Plan.Mode {
	case models.ModeCounter:
		return fmt.Sprintf("%d", s.CurrentRound)
	case models.ModeEMOM:
		if left, ok := s.RoundRemainingSeconds(); ok && s.Phase.Kind() != engine.PhaseReady {
			return models.FormatTime(left)
		}
	case models.ModeCustom:
		if left, ok := s.IntervalRemainingSeconds(); ok && s.Phase.Kind() != engine.PhaseReady {
			return models.FormatTime(left)
		}
	}

	if left, ok := s.RemainingSeconds(); ok {
		return models.FormatTimeLong(left)
	}
	return models.FormatTimeLong(s.ElapsedSeconds)
}

func roundInfo(s engine.Snapshot) string {
	switch s.Plan.Mode {
	case models.ModeAMRAP, models.ModeForTime:
		return fmt.Sprintf("Rounds: %d · Elapsed %s", s.CurrentRound, models.FormatTimeLong(s.ElapsedSeconds))
	case models.ModeEMOM:
		return fmt.Sprintf("Round %d / %d", max(s.CurrentRound, 1), s.Plan.EmomRounds)
	case models.ModeCustom:
		name := ""
		if iv, ok := s.CurrentInterval(); ok {
			name = fmt.Sprintf(" · %s (%s)", iv.Name, strings.ToLower(string(iv.Kind)))
		}
		return fmt.Sprintf("Round %d / %d%s", max(s.CurrentRound, 1), s.Plan.CustomTotalRounds, name)
	case models.ModeCounter:
		return fmt.Sprintf("Elapsed %s", models.FormatTimeLong(s.ElapsedSeconds))
	}
	return ""
}

func completion(s engine.Snapshot) (float64, bool) {
	total, ok := s.Plan.TotalSeconds()
	if !ok || total <= 0 {
		return 0, false
	}
	return min(float64(s.ElapsedSeconds)/float64(total), 1), true
}

func status(s engine.Snapshot) string {
	switch s.Phase.Kind() {
	case engine.PhaseReady:
		return "Press 's' to start"
	case engine.PhaseCountdown:
		return "Get ready..."
	case engine.PhaseRunning:
		return "Go go go!"
	case engine.PhasePaused:
		return "PAUSED - Press 's' to resume"
	case engine.PhaseCompleted:
		return "Time!"
	default:
		return ""
	}
}

// cueText is the banner shown for a cue, prefixed with the signals the plan
// asked for.
func cueText(c engine.Cue) string {
	var prefix string
	if c.Sound {
		prefix += "🔔 "
	}
	if c.Vibration {
		prefix += "📳 "
	}
	text := cueLabel(c)
	if text == "" {
		return ""
	}
	return prefix + text
}

func cueLabel(c engine.Cue) string {
	switch c.Kind {
	case engine.CueCountdown:
		return fmt.Sprintf("%d...", c.Remaining)
	case engine.CueGo:
		return "GO!"
	case engine.CueRoundStarted:
		return fmt.Sprintf("Round %d", c.Round)
	case engine.CueIntervalStarted:
		return "Switch!"
	case engine.CueFinalSeconds:
		return fmt.Sprintf("%d seconds left", c.Remaining)
	case engine.CueCompleted:
		return "Time!"
	default:
		return ""
	}
}

func phaseColor(s engine.Snapshot) lipgloss.Color {
	switch s.Phase.Kind() {
	case engine.PhaseCountdown:
		return lipgloss.Color("#F4A259")
	case engine.PhasePaused:
		return lipgloss.Color("#555555")
	case engine.PhaseCompleted:
		return lipgloss.Color("#4CAF50")
	}
	if iv, ok := s.CurrentInterval(); ok && iv.Kind == models.IntervalRest {
		return lipgloss.Color("#2E86AB")
	}
	return lipgloss.Color("#7D56F4")
}

func helpView(s engine.Snapshot) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1)

	var helpText string
	switch s.Phase.Kind() {
	case engine.PhaseReady:
		helpText = "s: start • b: back • q: quit"
	case engine.PhaseCountdown:
		helpText = "x: stop • b: back"
	case engine.PhaseRunning, engine.PhasePaused:
		parts := []string{"s: resume", "p: pause", "x: stop"}
		switch {
		case s.Plan.Mode == models.ModeCounter:
			parts = append(parts, "space: +1")
		case s.Plan.Mode.TracksRoundsManually():
			parts = append(parts, "space: round")
		}
		parts = append(parts, "f: finish", "b: back")
		helpText = strings.Join(parts, " • ")
	default:
		helpText = "x: reset • b: back • q: quit"
	}

	return helpStyle.Render(helpText)
}

type keyMap struct {
	Start     key.Binding
	Pause     key.Binding
	Stop      key.Binding
	Round     key.Binding
	Finish    key.Binding
	Save      key.Binding
	Again     key.Binding
	Done      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys("s", "r"),
		key.WithHelp("s", "start/resume"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	Round: key.NewBinding(
		key.WithKeys(" ", "+", "="),
		key.WithHelp("space", "round"),
	),
	Finish: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "finish"),
	),
	Save: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Again: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "go again"),
	),
	Done: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "done"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "esc"),
		key.WithHelp("b", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
