package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

type loadedMsg struct {
	workouts []models.SavedWorkout
	err      error
}

type deletedMsg struct {
	id  string
	err error
}

type Model struct {
	ctx           context.Context
	storage       *storage.Storage
	workouts      []models.SavedWorkout
	filter        int // 0 is all modes, otherwise models.Modes[filter-1]
	cursor        int
	chosen        *models.SavedWorkout
	confirmDelete bool
	errorMsg      string
	width         int
	height        int
}

func New(ctx context.Context, store *storage.Storage) Model {
	return Model{ctx: ctx, storage: store}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, store := m.ctx, m.storage
	mode, filtered := m.filterMode()
	return func() tea.Msg {
		if filtered {
			workouts, err := store.GetSavedWorkoutsByMode(ctx, mode)
			return loadedMsg{workouts: workouts, err: err}
		}
		workouts, err := store.GetSavedWorkouts(ctx)
		return loadedMsg{workouts: workouts, err: err}
	}
}

func (m Model) filterMode() (models.WorkoutMode, bool) {
	if m.filter == 0 {
		return "", false
	}
	return models.Modes[m.filter-1], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.workouts = msg.workouts
		m.cursor = min(m.cursor, max(len(m.workouts)-1, 0))
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.confirmDelete {
			m.confirmDelete = false
			if key.Matches(msg, keys.Delete) && len(m.workouts) > 0 {
				return m, m.delete(m.workouts[m.cursor].ID)
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.workouts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Filter):
			m.filter = (m.filter + 1) % (len(models.Modes) + 1)
			m.cursor = 0
			return m, m.load()
		case key.Matches(msg, keys.Enter):
			if len(m.workouts) == 0 {
				return m, nil
			}
			chosen := m.workouts[m.cursor]
			m.chosen = &chosen
			return m, tea.Quit
		case key.Matches(msg, keys.Delete):
			if len(m.workouts) > 0 {
				m.confirmDelete = true
			}
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) delete(id string) tea.Cmd {
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		return deletedMsg{id: id, err: store.DeleteSavedWorkout(ctx, id)}
	}
}

// Chosen returns the workout picked with enter.
func (m Model) Chosen() (models.SavedWorkout, bool) {
	if m.chosen == nil {
		return models.SavedWorkout{}, false
	}
	return *m.chosen, true
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
		MarginBottom(1)

	filterStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF7CCB")).
		Bold(true)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		PaddingLeft(4)

	filter := "All modes"
	if mode, ok := m.filterMode(); ok {
		filter = mode.Label()
	}

	var list string
	if len(m.workouts) == 0 {
		list = normalStyle.Render("No saved workouts yet. Save one from the workout setup screen with ctrl+s.")
	}
	for i, w := range m.workouts {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "▶ "
			style = selectedStyle
		}
		list += style.Render(fmt.Sprintf("%s%s", cursor, w.Name)) + "\n"

		detail := w.Plan.Describe()
		if !w.LastUsed.IsZero() {
			detail += " · last used " + w.LastUsed.Format("Jan 2")
		}
		list += detailStyle.Render(detail) + "\n"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("📚 Saved Workouts"),
		filterStyle.Render("Showing: "+filter),
		list,
		m.renderHelp(),
	)

	return containerStyle.Render(content)
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	if m.confirmDelete {
		warningStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(2)
		return warningStyle.Render(fmt.Sprintf("⚠️  Press 'd' again to delete %q • any other key cancels", m.workouts[m.cursor].Name))
	}

	help := "↑/↓: navigate • enter: use • m: filter by mode • d: delete • b: back"
	if m.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
		help = errorStyle.Render("❌ "+m.errorMsg) + "\n" + help
	}
	return helpStyle.Render(help)
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Filter key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
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
		key.WithKeys("enter"),
		key.WithHelp("enter", "use"),
	),
	Filter: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "filter"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
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
