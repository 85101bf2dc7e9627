package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

type MenuChoice int

const (
	StartWorkout MenuChoice = iota
	SavedWorkouts
	History
	Settings
	Help
	Exit
)

type item struct {
	label  string
	choice MenuChoice
	mode   models.WorkoutMode
}

type Model struct {
	items      []item
	cursor     int
	selected   item
	todayStats models.DayStats
	weekStats  models.WeekStats
	width      int
	height     int
	shouldQuit bool
}

func New(ctx context.Context, store *storage.Storage) (Model, error) {
	now := time.Now()
	todayStats, err := store.GetDayStats(ctx, now)
	if err != nil {
		return Model{}, err
	}
	year, week := now.ISOWeek()
	weekStats, err := store.GetWeekStats(ctx, year, week)
	if err != nil {
		return Model{}, err
	}

	icons := map[models.WorkoutMode]string{
		models.ModeAMRAP:   "🔁",
		models.ModeEMOM:    "⏰",
		models.ModeForTime: "🏁",
		models.ModeCustom:  "🧩",
		models.ModeCounter: "🔢",
	}

	var items []item
	for _, mode := range models.Modes {
		items = append(items, item{label: icons[mode] + " " + mode.Label(), choice: StartWorkout, mode: mode})
	}
	items = append(items,
		item{label: "📚 Saved Workouts", choice: SavedWorkouts},
		item{label: "📊 History & Stats", choice: History},
		item{label: "⚙️  Settings", choice: Settings},
		item{label: "🆘 Help", choice: Help},
		item{label: "👋 Exit", choice: Exit},
	)

	return Model{
		items:      items,
		todayStats: todayStats,
		weekStats:  weekStats,
	}, nil
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
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = len(m.items) - 1
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}

		case key.Matches(msg, keys.Enter):
			m.selected = m.items[m.cursor]
			if m.selected.choice == Exit {
				m.shouldQuit = true
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Help):
			m.selected = item{choice: Help}
			return m, tea.Quit

		case key.Matches(msg, keys.Quit):
			m.shouldQuit = true
			m.selected = item{choice: Exit}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(2)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(1).
		Align(lipgloss.Center)

	dateStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginBottom(1).
		Align(lipgloss.Center)

	statsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1).
		Align(lipgloss.Center)

	menuStyle := lipgloss.NewStyle().
		Padding(1, 2).
		MarginTop(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF7CCB")).
		Bold(true)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666"))

	title := titleStyle.Render("🏋️  WOD Timer")
	dateInfo := dateStyle.Render(time.Now().Format("Monday, January 2, 2006"))

	stats := statsStyle.Render(fmt.Sprintf(
		"Today: %d workouts | %s | %d rounds\nThis week: %d workouts | %s",
		m.todayStats.WorkoutsCount,
		models.FormatMinutes(m.todayStats.TotalSeconds),
		m.todayStats.TotalRounds,
		m.weekStats.WorkoutsCount,
		models.FormatMinutes(m.weekStats.TotalSeconds),
	))

	var menu string
	for i, it := range m.items {
		if i == 0 {
			menu += sectionStyle.Render("New workout") + "\n"
		}
		if i == len(models.Modes) {
			menu += "\n"
		}
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▶ "
			style = selectedStyle
		}
		menu += style.Render(cursor+it.label) + "\n"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		dateInfo,
		stats,
		menuStyle.Render(menu),
		m.renderHelp(),
	)

	return containerStyle.Render(content)
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1)

	return helpStyle.Render("↑/↓: navigate • enter: select • ?: help • q: quit")
}

func (m Model) ShouldQuit() bool {
	return m.shouldQuit
}

func (m Model) GetSelected() MenuChoice {
	return m.selected.choice
}

// SelectedMode is the workout mode picked from the "New workout" section.
func (m Model) SelectedMode() (models.WorkoutMode, bool) {
	if m.selected.choice != StartWorkout {
		return "", false
	}
	return m.selected.mode, true
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Help  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select"),
	),
	Help: key.NewBinding(
		key.WithKeys("?", "f1"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
