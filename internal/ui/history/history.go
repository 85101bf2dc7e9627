package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
)

type ViewType int

const (
	ListView ViewType = iota
	DayView
	WeekView
)

type loadedMsg struct {
	records []models.HistoryRecord
	day     models.DayStats
	week    models.WeekStats
	err     error
}

type updatedMsg struct {
	record models.HistoryRecord
	err    error
}

type deletedMsg struct {
	err error
}

type exportResultMsg struct {
	success bool
	message string
}

type clearMessageMsg struct{}

type Model struct {
	ctx           context.Context
	storage       *storage.Storage
	exportDir     string
	viewType      ViewType
	filter        int // 0 is all modes, otherwise models.Modes[filter-1]
	records       []models.HistoryRecord
	dayStats      models.DayStats
	weekStats     models.WeekStats
	cursor        int
	editing       bool
	notes         textinput.Model
	confirmDelete bool
	message       string
	width         int
	height        int
}

// New opens the history browser. Reports are exported to exportDir, or to
// ~/Downloads when it is empty.
func New(ctx context.Context, store *storage.Storage, exportDir string) Model {
	notes := textinput.New()
	notes.Placeholder = "Notes"
	notes.CharLimit = 200
	notes.Width = 50

	return Model{
		ctx:       ctx,
		storage:   store,
		exportDir: exportDir,
		notes:     notes,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, store := m.ctx, m.storage
	mode, filtered := m.filterMode()
	return func() tea.Msg {
		var msg loadedMsg
		now := time.Now()
		if filtered {
			msg.records, msg.err = store.GetHistoryByMode(ctx, mode)
		} else {
			msg.records, msg.err = store.GetAllHistory(ctx)
		}
		if msg.err != nil {
			return msg
		}
		if msg.day, msg.err = store.GetDayStats(ctx, now); msg.err != nil {
			return msg
		}
		year, week := now.ISOWeek()
		msg.week, msg.err = store.GetWeekStats(ctx, year, week)
		return msg
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
			return m.flash("❌ " + msg.err.Error())
		}
		m.records = msg.records
		m.dayStats = msg.day
		m.weekStats = msg.week
		m.cursor = min(m.cursor, max(len(m.records)-1, 0))
		return m, nil

	case updatedMsg:
		if msg.err != nil {
			return m.flash("❌ " + msg.err.Error())
		}
		for i := range m.records {
			if m.records[i].ID == msg.record.ID {
				m.records[i] = msg.record
			}
		}
		return m.flash("✅ Notes updated")

	case deletedMsg:
		if msg.err != nil {
			return m.flash("❌ " + msg.err.Error())
		}
		return m, m.load()

	case exportResultMsg:
		return m.flash(msg.message)

	case clearMessageMsg:
		m.message = ""
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		if m.confirmDelete {
			m.confirmDelete = false
			if key.Matches(msg, keys.Delete) {
				if rec, ok := m.selected(); ok {
					return m, m.delete(rec.ID)
				}
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			m.viewType = (m.viewType + 1) % 3
		case key.Matches(msg, keys.Export):
			return m, m.exportStats()
		case m.viewType != ListView:
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Filter):
			m.filter = (m.filter + 1) % (len(models.Modes) + 1)
			m.cursor = 0
			return m, m.load()
		case key.Matches(msg, keys.Notes):
			if rec, ok := m.selected(); ok {
				m.editing = true
				m.notes.SetValue(rec.Notes)
				return m, m.notes.Focus()
			}
		case key.Matches(msg, keys.Delete):
			if _, ok := m.selected(); ok {
				m.confirmDelete = true
			}
		}
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.editing = false
		m.notes.Blur()
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		rec.Notes = strings.TrimSpace(m.notes.Value())
		return m, m.update(rec)
	case key.Matches(msg, keys.Cancel):
		m.editing = false
		m.notes.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m Model) selected() (models.HistoryRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return models.HistoryRecord{}, false
	}
	return m.records[m.cursor], true
}

func (m Model) flash(message string) (Model, tea.Cmd) {
	m.message = message
	return m, tea.Tick(time.Second*3, func(t time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

func (m Model) update(rec models.HistoryRecord) tea.Cmd {
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		if err := store.UpdateHistory(ctx, rec); err != nil {
			return updatedMsg{err: err}
		}
		fresh, err := store.GetHistory(ctx, rec.ID)
		return updatedMsg{record: fresh, err: err}
	}
}

func (m Model) delete(id string) tea.Cmd {
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		return deletedMsg{err: store.DeleteHistory(ctx, id)}
	}
}

func (m Model) exportStats() tea.Cmd {
	ctx, store, dir := m.ctx, m.storage, m.exportDir
	return func() tea.Msg {
		report, err := store.ExportAllStats(ctx)
		if err != nil {
			return exportResultMsg{success: false, message: fmt.Sprintf("Export failed: %v", err)}
		}

		filename := fmt.Sprintf("wodtimer-stats-%s.txt", time.Now().Format("2006-01-02-150405"))
		if dir != "" {
			filePath := filepath.Join(dir, filename)
			if err := os.WriteFile(filePath, []byte(report), 0o644); err != nil {
				return exportResultMsg{success: false, message: fmt.Sprintf("Failed to save file: %v", err)}
			}
			return exportResultMsg{success: true, message: fmt.Sprintf("✅ Exported to %s", filePath)}
		}

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return exportResultMsg{success: false, message: fmt.Sprintf("Failed to get home directory: %v", err)}
		}
		filePath := filepath.Join(homeDir, "Downloads", filename)
		if err := os.WriteFile(filePath, []byte(report), 0o644); err != nil {
			// Downloads may not exist.
			filePath = filepath.Join(homeDir, filename)
			if err := os.WriteFile(filePath, []byte(report), 0o644); err != nil {
				return exportResultMsg{success: false, message: fmt.Sprintf("Failed to save file: %v", err)}
			}
		}
		return exportResultMsg{success: true, message: fmt.Sprintf("✅ Exported to %s", filePath)}
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(2)

	var content string
	switch m.viewType {
	case ListView:
		content = m.renderListView()
	case DayView:
		content = m.renderDayView()
	case WeekView:
		content = m.renderWeekView()
	}

	return containerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelp()))
}

func (m Model) renderListView() string {
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

	notesStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		PaddingLeft(4)

	filter := "All modes"
	if mode, ok := m.filterMode(); ok {
		filter = mode.Label()
	}

	var list string
	if len(m.records) == 0 {
		list = normalStyle.Render("No workouts logged yet. Go move! 💪")
	}
	for i, rec := range m.records {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "▶ "
			style = selectedStyle
		}
		list += style.Render(cursor+recordLine(rec)) + "\n"
		if i == m.cursor && m.editing {
			list += notesStyle.Render(m.notes.View()) + "\n"
		} else if rec.Notes != "" {
			list += notesStyle.Render(rec.Notes) + "\n"
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("📒 Workout History"),
		filterStyle.Render("Showing: "+filter),
		list,
	)
}

func recordLine(rec models.HistoryRecord) string {
	name := rec.WodName
	if name == "" {
		name = rec.Mode.Label()
	}
	return fmt.Sprintf("%s  %-20s %s  %d rounds",
		rec.Date.Format("Jan 2 15:04"),
		name,
		models.FormatTimeLong(rec.DurationSeconds),
		rec.RoundsCompleted,
	)
}

func (m Model) renderDayView() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(2)

	statsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	workoutStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		PaddingLeft(2)

	date, _ := time.ParseInLocation(time.DateOnly, m.dayStats.Date, time.Local)
	title := titleStyle.Render(fmt.Sprintf("📊 Today - %s", date.Format("Monday, January 2, 2006")))

	stats := statsStyle.Render(fmt.Sprintf(
		"Workouts: %d | Total Time: %s | Rounds: %d",
		m.dayStats.WorkoutsCount,
		models.FormatMinutes(m.dayStats.TotalSeconds),
		m.dayStats.TotalRounds,
	))

	var workouts string
	if len(m.dayStats.Workouts) == 0 {
		workouts = workoutStyle.Render("No workouts yet today. 🚀")
	} else {
		workouts = "\nWorkouts:\n"
		for _, rec := range m.dayStats.Workouts {
			workouts += workoutStyle.Render("✅ "+recordLine(rec)) + "\n"
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, stats, workouts)
}

func (m Model) renderWeekView() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(2)

	statsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	dayStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		PaddingLeft(2)

	title := titleStyle.Render(fmt.Sprintf("📅 Weekly Stats - Week %d, %d", m.weekStats.Week, m.weekStats.Year))

	stats := statsStyle.Render(fmt.Sprintf(
		"Total Workouts: %d | Total Time: %s",
		m.weekStats.WorkoutsCount,
		models.FormatMinutes(m.weekStats.TotalSeconds),
	))

	var byMode []string
	for _, mode := range models.Modes {
		if n := m.weekStats.ByMode[mode]; n > 0 {
			byMode = append(byMode, fmt.Sprintf("%s %d", mode.Label(), n))
		}
	}
	modes := ""
	if len(byMode) > 0 {
		modes = statsStyle.Render(strings.Join(byMode, " · "))
	}

	var days string
	if len(m.weekStats.DailyStats) == 0 {
		days = dayStyle.Render("No workouts this week yet. Let's get started! 💪")
	} else {
		days = "\nDaily Breakdown:\n"
		for _, day := range m.weekStats.DailyStats {
			date, _ := time.ParseInLocation(time.DateOnly, day.Date, time.Local)
			days += dayStyle.Render(fmt.Sprintf(
				"%s: %d workouts (%s)",
				date.Format("Monday"),
				day.WorkoutsCount,
				models.FormatMinutes(day.TotalSeconds),
			)) + "\n"
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, stats, modes, m.renderWeekChart(), days)
}

func (m Model) renderWeekChart() string {
	chartStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1).
		MarginBottom(1)

	maxWorkouts := 0
	dayMap := make(map[string]int)
	for _, day := range m.weekStats.DailyStats {
		maxWorkouts = max(maxWorkouts, day.WorkoutsCount)
		date, _ := time.ParseInLocation(time.DateOnly, day.Date, time.Local)
		dayMap[date.Format("Mon")] = day.WorkoutsCount
	}
	if maxWorkouts == 0 {
		return ""
	}

	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	barHeight := 5

	chart := "\n"
	for row := barHeight; row > 0; row-- {
		for _, day := range days {
			level := int(float64(dayMap[day]) / float64(maxWorkouts) * float64(barHeight))
			if level >= row {
				chart += "█ "
			} else {
				chart += "  "
			}
		}
		chart += "\n"
	}
	for _, day := range days {
		chart += day[:2] + " "
	}

	return chartStyle.Render(chart)
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	var help string
	switch {
	case m.editing:
		help = "enter: save notes • esc: cancel"
	case m.confirmDelete:
		help = "⚠️  Press 'd' again to delete this workout • any other key cancels"
	case m.viewType == ListView:
		help = "↑/↓: navigate • n: notes • d: delete • m: filter • tab: today/week • e: export • b: back"
	default:
		help = "tab: switch view • e: export • b: back • q: quit"
	}

	if m.message != "" {
		messageStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
		help = messageStyle.Render(m.message) + "\n" + help
	}

	return helpStyle.Render(help)
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Filter  key.Binding
	Notes   key.Binding
	Delete  key.Binding
	Export  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Back    key.Binding
	Quit    key.Binding
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
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch view"),
	),
	Filter: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "filter by mode"),
	),
	Notes: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "edit notes"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
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
