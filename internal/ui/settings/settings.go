package settings

import (
	"context"
	"fmt"
	"strconv"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/wodtimer/internal/config"
	"github.com/adibhanna/wodtimer/internal/storage"
)

const (
	countdownField = iota
	finalCueField
	runningTickField
)

type Model struct {
	ctx          context.Context
	storage      *storage.Storage
	path         string
	config       config.Config
	inputs       []textinput.Model
	focusIndex   int
	saved        bool
	reset        bool
	confirmReset bool
	errorMsg     string
	width        int
	height       int
}

// New edits the settings file at path, starting from cfg.
func New(ctx context.Context, store *storage.Storage, path string, cfg config.Config) Model {
	inputs := make([]textinput.Model, 3)

	numericValidation := func(text string) error {
		if text == "" {
			return nil
		}
		for _, char := range text {
			if !unicode.IsDigit(char) {
				return fmt.Errorf("only numbers allowed")
			}
		}
		return nil
	}

	inputs[countdownField] = textinput.New()
	inputs[countdownField].Placeholder = "3"
	inputs[countdownField].SetValue(strconv.Itoa(cfg.CountdownSeconds))
	inputs[countdownField].Focus()
	inputs[countdownField].CharLimit = 2
	inputs[countdownField].Width = 20
	inputs[countdownField].Validate = numericValidation

	inputs[finalCueField] = textinput.New()
	inputs[finalCueField].Placeholder = "10"
	inputs[finalCueField].SetValue(strconv.Itoa(cfg.FinalCueSeconds))
	inputs[finalCueField].CharLimit = 2
	inputs[finalCueField].Width = 20
	inputs[finalCueField].Validate = numericValidation

	inputs[runningTickField] = textinput.New()
	inputs[runningTickField].Placeholder = "100"
	inputs[runningTickField].SetValue(strconv.Itoa(cfg.RunningTickMS))
	inputs[runningTickField].CharLimit = 4
	inputs[runningTickField].Width = 20
	inputs[runningTickField].Validate = numericValidation

	return Model{
		ctx:     ctx,
		storage: store,
		path:    path,
		config:  cfg,
		inputs:  inputs,
	}
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

	case tea.KeyMsg:
		if m.confirmReset && !key.Matches(msg, keys.Reset) && !key.Matches(msg, keys.Back) {
			m.confirmReset = false
		}

		switch {
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
			m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
			m.updateFocus()
			return m, nil

		case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Up):
			m.focusIndex = (m.focusIndex + len(m.inputs) - 1) % len(m.inputs)
			m.updateFocus()
			return m, nil

		case key.Matches(msg, keys.Sound):
			m.config.SoundEnabled = !m.config.SoundEnabled
			return m, nil

		case key.Matches(msg, keys.Vibration):
			m.config.VibrationEnabled = !m.config.VibrationEnabled
			return m, nil

		case key.Matches(msg, keys.Save):
			if err := m.saveConfig(); err != nil {
				m.errorMsg = err.Error()
				m.saved = false
				return m, nil
			}
			m.saved = true
			m.errorMsg = ""
			return m, tea.Quit

		case key.Matches(msg, keys.Reset):
			if !m.confirmReset {
				m.confirmReset = true
				return m, nil
			}
			m.confirmReset = false
			if err := m.storage.ResetAllData(m.ctx); err != nil {
				m.errorMsg = err.Error()
				return m, nil
			}
			m.reset = true
			return m, nil

		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			if m.confirmReset {
				m.confirmReset = false
				return m, nil
			}
			return m, tea.Quit
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *Model) updateFocus() {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		oldValue := m.inputs[i].Value()
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		if m.inputs[i].Value() != oldValue {
			m.errorMsg = ""
			m.saved = false
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) saveConfig() error {
	countdown, err := intField(m.inputs[countdownField].Value(), "countdown", 0, 60)
	if err != nil {
		return err
	}
	finalCue, err := intField(m.inputs[finalCueField].Value(), "final cue window", 0, 60)
	if err != nil {
		return err
	}
	tick, err := intField(m.inputs[runningTickField].Value(), "running tick", 1, 1000)
	if err != nil {
		return err
	}

	cfg := m.config
	cfg.CountdownSeconds = countdown
	cfg.FinalCueSeconds = finalCue
	cfg.RunningTickMS = tick
	if err := config.Save(m.path, cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

func intField(value, name string, lo, hi int) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d-%d", name, lo, hi)
	}
	return n, nil
}

// Config is the configuration as last edited; it matches the file once
// Saved reports true.
func (m Model) Config() config.Config {
	return m.config
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
		Padding(4)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(3).
		Align(lipgloss.Center)

	formStyle := lipgloss.NewStyle().
		Align(lipgloss.Left).
		MarginTop(2).
		MarginBottom(2)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	inputStyle := lipgloss.NewStyle().
		MarginBottom(2)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		Bold(true).
		MarginTop(2)

	labels := []string{
		"Countdown (seconds):",
		"Final-seconds cues (seconds):",
		"Display refresh (ms):",
	}

	var form string
	for i, label := range labels {
		form += labelStyle.Render(label) + "\n"
		form += inputStyle.Render(m.inputs[i].View()) + "\n"
	}
	form += labelStyle.Render(fmt.Sprintf("Sound by default: %s", onOff(m.config.SoundEnabled))) + "\n"
	form += labelStyle.Render(fmt.Sprintf("Vibration by default: %s", onOff(m.config.VibrationEnabled)))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render("⚙️  Settings"),
		formStyle.Render(form),
		m.renderHelp(),
	)

	if m.saved {
		content += "\n" + successStyle.Render("✅ Settings saved successfully!")
	}

	if m.reset {
		content += "\n" + successStyle.Render("🔄 All workout data reset successfully!")
	}

	if m.confirmReset {
		warningStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(2)
		content += "\n" + warningStyle.Render("⚠️  WARNING: This will delete ALL workout history and saved workouts!")
	}

	if m.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(2)
		content += "\n" + errorStyle.Render("❌ "+m.errorMsg)
	}

	return containerStyle.Render(content)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	if m.confirmReset {
		return helpStyle.Render("⚠️  Press 'r' again to confirm RESET (deletes all data) • b: cancel")
	}

	return helpStyle.Render("tab/↓: next field • shift+tab/↑: previous • ctrl+t: sound • ctrl+y: vibration • s: save • r: reset all data • b: back")
}

type keyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Up        key.Binding
	Down      key.Binding
	Sound     key.Binding
	Vibration key.Binding
	Save      key.Binding
	Reset     key.Binding
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
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous field"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next field"),
	),
	Sound: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "toggle sound"),
	),
	Vibration: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "toggle vibration"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset all data"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "esc"),
		key.WithHelp("b", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
