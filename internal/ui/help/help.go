package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Model struct {
	width  int
	height int
	quit   bool
}

func New() Model {
	return Model{}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Back) {
			m.quit = true
			return m, tea.Quit
		}
	}

	return m, nil
}

type entry struct {
	key  string
	desc string
}

var sections = []struct {
	title   string
	entries []entry
}{
	{"🏋️  Workout Modes", []entry{
		{"AMRAP", "As many rounds as possible before the clock runs out"},
		{"EMOM", "Every minute on the minute, for a set number of rounds"},
		{"For Time", "Count up until you finish, with an optional time cap"},
		{"Custom", "Your own work/rest intervals, repeated for N rounds"},
		{"Counter", "A stopwatch with a rep counter"},
	}},
	{"⏱️  Timer Controls", []entry{
		{"s / r", "Start the countdown, or resume when paused"},
		{"p", "Pause"},
		{"space / +", "Log a round (AMRAP, For Time) or count a rep (Counter)"},
		{"f", "Finish now and record the result"},
		{"x", "Stop and discard the session"},
		{"enter", "Save the result (on the complete screen)"},
		{"ctrl+r", "Go again with the same workout after saving"},
	}},
	{"🧩 Workout Setup", []entry{
		{"tab / ↓", "Next field"},
		{"ctrl+t / ctrl+y", "Toggle sound / vibration cues"},
		{"ctrl+s", "Save as a named workout"},
		{"enter", "Start"},
		{"40w, 20r", "Custom intervals: seconds with w (work) or r (rest), e.g. Sprint:15w"},
	}},
	{"📊 History & Saved Workouts", []entry{
		{"tab", "Switch between history, today and this week"},
		{"m", "Filter by mode"},
		{"n", "Edit notes on a workout"},
		{"d d", "Delete"},
		{"e", "Export a stats report"},
	}},
	{"📋 Navigation", []entry{
		{"↑ / k", "Move up in menus"},
		{"↓ / j", "Move down in menus"},
		{"enter / space", "Select menu item"},
		{"b / esc", "Go back"},
		{"? / f1", "Show this help page"},
		{"q / ctrl+c", "Quit"},
	}},
}

func (m Model) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	containerStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(2)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		Align(lipgloss.Center).
		MarginBottom(1)

	sectionTitleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC"))

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2).
		Align(lipgloss.Center)

	parts := []string{titleStyle.Render("🆘 WOD Timer Help")}
	for _, section := range sections {
		lines := make([]string, len(section.entries))
		for i, e := range section.entries {
			lines[i] = fmt.Sprintf("%s - %s", keyStyle.Render(e.key), descStyle.Render(e.desc))
		}
		parts = append(parts, sectionTitleStyle.Render(section.title), strings.Join(lines, "\n"))
	}
	parts = append(parts,
		descStyle.Render("\nHistory and saved workouts live in ~/.wodtimer/wodtimer.db"),
		footerStyle.Render("Press 'b/esc' to go back"),
	)

	return containerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) ShouldQuit() bool {
	return m.quit
}

type keyMap struct {
	Back key.Binding
}

var keys = keyMap{
	Back: key.NewBinding(
		key.WithKeys("b", "esc", "h", "q", "ctrl+c"),
		key.WithHelp("b/esc", "back"),
	),
}
