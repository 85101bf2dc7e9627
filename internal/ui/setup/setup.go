package setup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

type fieldKind int

const (
	fieldAmrapMinutes fieldKind = iota
	fieldEmomRounds
	fieldCapMinutes
	fieldCustomRounds
	fieldIntervals
	fieldName
)

type field struct {
	kind  fieldKind
	label string
	input textinput.Model
}

type savedMsg struct {
	workout models.SavedWorkout
	err     error
}

type Model struct {
	ctx        context.Context
	storage    *storage.Storage
	plan       models.WorkoutPlan
	template   models.SavedWorkout
	fields     []field
	focusIndex int
	started    bool
	message    string
	errorMsg   string
	width      int
	height     int
}

// New builds a form for plan. A non-nil template is edited in place when
// the plan is saved.
func New(ctx context.Context, store *storage.Storage, plan models.WorkoutPlan, template *models.SavedWorkout) Model {
	m := Model{
		ctx:     ctx,
		storage: store,
		plan:    plan.Clone(),
	}
	if template != nil {
		m.template = *template
	}

	numeric := func(text string) error {
		for _, char := range text {
			if !unicode.IsDigit(char) {
				return fmt.Errorf("only numbers allowed")
			}
		}
		return nil
	}

	add := func(kind fieldKind, label, value, placeholder string, limit int, validate textinput.ValidateFunc) {
		in := textinput.New()
		in.Placeholder = placeholder
		in.SetValue(value)
		in.CharLimit = limit
		in.Width = 30
		in.Validate = validate
		m.fields = append(m.fields, field{kind: kind, label: label, input: in})
	}

	switch plan.Mode {
	case models.ModeAMRAP:
		add(fieldAmrapMinutes, "Duration (minutes):", strconv.Itoa(plan.AmrapDurationSeconds/60), "20", 3, numeric)
	case models.ModeEMOM:
		add(fieldEmomRounds, "Rounds (1 per minute):", strconv.Itoa(plan.EmomRounds), "10", 3, numeric)
	case models.ModeForTime:
		capMinutes := 0
		if plan.ForTimeHasCap {
			capMinutes = plan.ForTimeCapSeconds / 60
		}
		add(fieldCapMinutes, "Time cap (minutes, 0 for none):", strconv.Itoa(capMinutes), "30", 3, numeric)
	case models.ModeCustom:
		add(fieldCustomRounds, "Rounds:", strconv.Itoa(plan.CustomTotalRounds), "8", 3, numeric)
		add(fieldIntervals, "Intervals (seconds, w=work r=rest):", FormatIntervals(plan.CustomIntervals), "40w,20r", 200, nil)
	}
	add(fieldName, "Name (to save as a workout):", m.template.Name, "Fran", 40, nil)

	m.fields[0].input.Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.template = msg.workout
		m.message = fmt.Sprintf("Saved %q", msg.workout.Name)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
			m.focusIndex = (m.focusIndex + 1) % len(m.fields)
			m.updateFocus()
			return m, nil

		case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Up):
			m.focusIndex = (m.focusIndex - 1 + len(m.fields)) % len(m.fields)
			m.updateFocus()
			return m, nil

		case key.Matches(msg, keys.Sound):
			m.plan.SoundEnabled = !m.plan.SoundEnabled
			return m, nil

		case key.Matches(msg, keys.Vibration):
			m.plan.VibrationEnabled = !m.plan.VibrationEnabled
			return m, nil

		case key.Matches(msg, keys.Start):
			plan, err := m.buildPlan()
			if err != nil {
				m.errorMsg = err.Error()
				return m, nil
			}
			m.plan = plan
			m.started = true
			return m, tea.Quit

		case key.Matches(msg, keys.Save):
			plan, err := m.buildPlan()
			if err != nil {
				m.errorMsg = err.Error()
				return m, nil
			}
			name := strings.TrimSpace(m.value(fieldName))
			if name == "" {
				m.errorMsg = "enter a name to save this workout"
				return m, nil
			}
			m.plan = plan
			return m, m.saveTemplate(name)

		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			return m, tea.Quit
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *Model) updateFocus() {
	for i := range m.fields {
		if i == m.focusIndex {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.fields))
	for i := range m.fields {
		old := m.fields[i].input.Value()
		m.fields[i].input, cmds[i] = m.fields[i].input.Update(msg)
		if m.fields[i].input.Value() != old {
			m.errorMsg = ""
			m.message = ""
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) value(kind fieldKind) string {
	for _, f := range m.fields {
		if f.kind == kind {
			return f.input.Value()
		}
	}
	return ""
}

func (m Model) buildPlan() (models.WorkoutPlan, error) {
	plan := m.plan.Clone()

	positive := func(kind fieldKind, what string, limit int) (int, error) {
		n, err := strconv.Atoi(m.value(kind))
		if err != nil || n < 1 || n > limit {
			return 0, fmt.Errorf("%s must be between 1-%d", what, limit)
		}
		return n, nil
	}

	switch plan.Mode {
	case models.ModeAMRAP:
		minutes, err := positive(fieldAmrapMinutes, "duration", 180)
		if err != nil {
			return plan, err
		}
		plan.AmrapDurationSeconds = minutes * 60
	case models.ModeEMOM:
		rounds, err := positive(fieldEmomRounds, "rounds", 120)
		if err != nil {
			return plan, err
		}
		plan.EmomRounds = rounds
	case models.ModeForTime:
		minutes, err := strconv.Atoi(m.value(fieldCapMinutes))
		if err != nil || minutes < 0 || minutes > 180 {
			return plan, fmt.Errorf("time cap must be between 0-180 minutes")
		}
		plan.ForTimeHasCap = minutes > 0
		if minutes > 0 {
			plan.ForTimeCapSeconds = minutes * 60
		}
	case models.ModeCustom:
		rounds, err := positive(fieldCustomRounds, "rounds", 100)
		if err != nil {
			return plan, err
		}
		intervals, err := ParseIntervals(m.value(fieldIntervals))
		if err != nil {
			return plan, err
		}
		plan.CustomTotalRounds = rounds
		plan.CustomIntervals = nil
		for _, iv := range intervals {
			plan = plan.WithInterval(iv)
		}
	}

	if err := plan.Validate(); err != nil {
		return plan, err
	}
	return plan, nil
}

func (m Model) saveTemplate(name string) tea.Cmd {
	w := m.template
	w.Name = name
	w.Mode = m.plan.Mode
	w.Plan = m.plan.Clone()
	w.Description = m.plan.Describe()
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		saved, err := store.SaveWorkout(ctx, w)
		return savedMsg{workout: saved, err: err}
	}
}

// Started reports whether the user asked to start the configured plan.
func (m Model) Started() bool {
	return m.started
}

func (m Model) Plan() models.WorkoutPlan {
	return m.plan
}

// Name is the workout name entered in the form, if any.
func (m Model) Name() string {
	return strings.TrimSpace(m.value(fieldName))
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

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(2).
		Align(lipgloss.Center)

	formStyle := lipgloss.NewStyle().
		Align(lipgloss.Left).
		MarginTop(1).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C"))

	inputStyle := lipgloss.NewStyle().
		MarginBottom(1)

	toggleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	var form string
	for _, f := range m.fields {
		form += labelStyle.Render(f.label) + "\n"
		form += inputStyle.Render(f.input.View()) + "\n"
	}
	form += toggleStyle.Render(fmt.Sprintf("Sound cues: %s   Vibration cues: %s",
		onOff(m.plan.SoundEnabled), onOff(m.plan.VibrationEnabled)))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render("⏱️  "+m.plan.Mode.Label()),
		formStyle.Render(form),
		m.renderHelp(),
	)

	if m.message != "" {
		successStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50")).
			Bold(true).
			MarginTop(1)
		content += "\n" + successStyle.Render("✅ "+m.message)
	}

	if m.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(1)
		content += "\n" + errorStyle.Render("❌ "+m.errorMsg)
	}

	return containerStyle.Render(content)
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1)

	return helpStyle.Render("enter: start • tab: next field • ctrl+t: sound • ctrl+y: vibration • ctrl+s: save workout • esc: back")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

var errNoIntervals = errors.New("add at least one interval, e.g. 40w,20r")

// ParseIntervals reads a comma separated interval list. Each entry is a
// duration in seconds followed by w (work) or r (rest), optionally prefixed
// by a name: "Burpees:40w, 20r".
func ParseIntervals(s string) ([]models.CustomInterval, error) {
	var intervals []models.CustomInterval
	for _, raw := range strings.Split(s, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		var name string
		if i := strings.LastIndex(entry, ":"); i >= 0 {
			name = strings.TrimSpace(entry[:i])
			entry = strings.TrimSpace(entry[i+1:])
		}
		if len(entry) < 2 {
			return nil, fmt.Errorf("interval %q: expected seconds followed by w or r", raw)
		}

		var kind models.IntervalKind
		switch unicode.ToLower(rune(entry[len(entry)-1])) {
		case 'w':
			kind = models.IntervalWork
		case 'r':
			kind = models.IntervalRest
		default:
			return nil, fmt.Errorf("interval %q: expected seconds followed by w or r", raw)
		}

		seconds, err := strconv.Atoi(entry[:len(entry)-1])
		if err != nil || seconds < 1 {
			return nil, fmt.Errorf("interval %q: seconds must be a positive number", raw)
		}
		if name == "" {
			name = defaultIntervalName(kind)
		}
		intervals = append(intervals, models.CustomInterval{Name: name, DurationSeconds: seconds, Kind: kind})
	}
	if len(intervals) == 0 {
		return nil, errNoIntervals
	}
	return intervals, nil
}

// FormatIntervals is the inverse of ParseIntervals. Default names are
// omitted.
func FormatIntervals(intervals []models.CustomInterval) string {
	parts := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		suffix := "w"
		if iv.Kind == models.IntervalRest {
			suffix = "r"
		}
		entry := strconv.Itoa(iv.DurationSeconds) + suffix
		if iv.Name != "" && iv.Name != defaultIntervalName(iv.Kind) {
			entry = iv.Name + ":" + entry
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, ",")
}

func defaultIntervalName(kind models.IntervalKind) string {
	if kind == models.IntervalRest {
		return "Rest"
	}
	return "Work"
}

type keyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Up        key.Binding
	Down      key.Binding
	Sound     key.Binding
	Vibration key.Binding
	Start     key.Binding
	Save      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous field"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next field"),
	),
	Sound: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "toggle sound"),
	),
	Vibration: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "toggle vibration"),
	),
	Start: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "start"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save workout"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
