package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/adibhanna/wodtimer/internal/clock"
	"github.com/adibhanna/wodtimer/internal/models"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS workout_history (
	id               TEXT PRIMARY KEY,
	date             INTEGER NOT NULL,
	mode             TEXT NOT NULL,
	wod_name         TEXT NOT NULL DEFAULT '',
	duration_seconds INTEGER NOT NULL,
	rounds_completed INTEGER NOT NULL,
	notes            TEXT NOT NULL DEFAULT '',
	photo_path       TEXT NOT NULL DEFAULT '',
	plan             TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS workout_history_date ON workout_history (date);

CREATE TABLE IF NOT EXISTS saved_workouts (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	mode        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	photo_path  TEXT NOT NULL DEFAULT '',
	plan        TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	last_used   INTEGER NOT NULL DEFAULT 0
);`

const (
	historyColumns = `id, date, mode, wod_name, duration_seconds, rounds_completed, notes, photo_path, plan`
	workoutColumns = `id, name, mode, description, photo_path, plan, created_at, last_used`
)

type Storage struct {
	db    *sql.DB
	clock clock.Clock
}

type Option func(*Storage)

// WithClock sets the clock used for creation times and reports.
func WithClock(c clock.Clock) Option {
	return func(s *Storage) {
		s.clock = c
	}
}

// Open opens (or creates) the workout database in dataDir.
func Open(dataDir string, opts ...Option) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "wodtimer.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	s := &Storage{db: db, clock: clock.Real{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveHistory inserts or replaces a history record. A record without an ID
// gets a fresh one; the stored record is returned.
func (s *Storage) SaveHistory(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date.IsZero() {
		rec.Date = s.clock.Now()
	}
	plan, err := json.Marshal(rec.Plan)
	if err != nil {
		return rec, fmt.Errorf("encoding plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO workout_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date.UnixMilli(), string(rec.Mode), rec.WodName,
		rec.DurationSeconds, rec.RoundsCompleted, rec.Notes, rec.PhotoPath, string(plan),
	)
	if err != nil {
		return rec, fmt.Errorf("saving history %s: %w", rec.ID, err)
	}
	return rec, nil
}

// UpdateHistory rewrites an existing record's editable fields.
func (s *Storage) UpdateHistory(ctx context.Context, rec models.HistoryRecord) error {
	plan, err := json.Marshal(rec.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workout_history
		 SET date = ?, mode = ?, wod_name = ?, duration_seconds = ?, rounds_completed = ?,
		     notes = ?, photo_path = ?, plan = ?
		 WHERE id = ?`,
		rec.Date.UnixMilli(), string(rec.Mode), rec.WodName, rec.DurationSeconds,
		rec.RoundsCompleted, rec.Notes, rec.PhotoPath, string(plan), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating history %s: %w", rec.ID, err)
	}
	return expectRow(res, "history", rec.ID)
}

func (s *Storage) DeleteHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workout_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting history %s: %w", id, err)
	}
	return expectRow(res, "history", id)
}

func (s *Storage) GetHistory(ctx context.Context, id string) (models.HistoryRecord, error) {
	records, err := s.queryHistory(ctx, `WHERE id = ?`, id)
	if err != nil {
		return models.HistoryRecord{}, err
	}
	if len(records) == 0 {
		return models.HistoryRecord{}, fmt.Errorf("history %s: %w", id, ErrNotFound)
	}
	return records[0], nil
}

// GetAllHistory returns every record, newest first.
func (s *Storage) GetAllHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	return s.queryHistory(ctx, `ORDER BY date DESC`)
}

func (s *Storage) GetHistoryByMode(ctx context.Context, mode models.WorkoutMode) ([]models.HistoryRecord, error) {
	return s.queryHistory(ctx, `WHERE mode = ? ORDER BY date DESC`, string(mode))
}

// GetHistoryByDateRange returns records dated within [from, to], newest first.
func (s *Storage) GetHistoryByDateRange(ctx context.Context, from, to time.Time) ([]models.HistoryRecord, error) {
	return s.queryHistory(ctx, `WHERE date BETWEEN ? AND ? ORDER BY date DESC`, from.UnixMilli(), to.UnixMilli())
}

func (s *Storage) queryHistory(ctx context.Context, where string, args ...any) ([]models.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM workout_history `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var (
			rec    models.HistoryRecord
			date   int64
			mode   string
			planJS string
		)
		if err := rows.Scan(&rec.ID, &date, &mode, &rec.WodName, &rec.DurationSeconds,
			&rec.RoundsCompleted, &rec.Notes, &rec.PhotoPath, &planJS); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		rec.Date = time.UnixMilli(date)
		rec.Mode = models.WorkoutMode(mode)
		if err := json.Unmarshal([]byte(planJS), &rec.Plan); err != nil {
			return nil, fmt.Errorf("decoding plan of history %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveWorkout inserts or replaces a saved workout template.
func (s *Storage) SaveWorkout(ctx context.Context, w models.SavedWorkout) (models.SavedWorkout, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.clock.Now()
	}
	if w.Mode == "" {
		w.Mode = w.Plan.Mode
	}
	plan, err := json.Marshal(w.Plan)
	if err != nil {
		return w, fmt.Errorf("encoding plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO saved_workouts (`+workoutColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, string(w.Mode), w.Description, w.PhotoPath, string(plan),
		w.CreatedAt.UnixMilli(), unixMilliOrZero(w.LastUsed),
	)
	if err != nil {
		return w, fmt.Errorf("saving workout %s: %w", w.ID, err)
	}
	return w, nil
}

func (s *Storage) GetSavedWorkout(ctx context.Context, id string) (models.SavedWorkout, error) {
	workouts, err := s.queryWorkouts(ctx, `WHERE id = ?`, id)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	if len(workouts) == 0 {
		return models.SavedWorkout{}, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	return workouts[0], nil
}

// GetSavedWorkouts lists templates, most recently used first, then newest.
func (s *Storage) GetSavedWorkouts(ctx context.Context) ([]models.SavedWorkout, error) {
	return s.queryWorkouts(ctx, `ORDER BY last_used DESC, created_at DESC`)
}

func (s *Storage) GetSavedWorkoutsByMode(ctx context.Context, mode models.WorkoutMode) ([]models.SavedWorkout, error) {
	return s.queryWorkouts(ctx, `WHERE mode = ? ORDER BY last_used DESC, created_at DESC`, string(mode))
}

func (s *Storage) MarkWorkoutUsed(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE saved_workouts SET last_used = ? WHERE id = ?`,
		s.clock.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("marking workout %s used: %w", id, err)
	}
	return expectRow(res, "workout", id)
}

func (s *Storage) DeleteSavedWorkout(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", id, err)
	}
	return expectRow(res, "workout", id)
}

func (s *Storage) queryWorkouts(ctx context.Context, where string, args ...any) ([]models.SavedWorkout, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+workoutColumns+` FROM saved_workouts `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.SavedWorkout
	for rows.Next() {
		var (
			w                 models.SavedWorkout
			mode, planJS      string
			created, lastUsed int64
		)
		if err := rows.Scan(&w.ID, &w.Name, &mode, &w.Description, &w.PhotoPath, &planJS,
			&created, &lastUsed); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.Mode = models.WorkoutMode(mode)
		w.CreatedAt = time.UnixMilli(created)
		if lastUsed > 0 {
			w.LastUsed = time.UnixMilli(lastUsed)
		}
		if err := json.Unmarshal([]byte(planJS), &w.Plan); err != nil {
			return nil, fmt.Errorf("decoding plan of workout %s: %w", w.ID, err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// GetDayStats summarizes the local calendar day containing day.
func (s *Storage) GetDayStats(ctx context.Context, day time.Time) (models.DayStats, error) {
	start := startOfDay(day)
	records, err := s.GetHistoryByDateRange(ctx, start, start.AddDate(0, 0, 1).Add(-time.Millisecond))
	if err != nil {
		return models.DayStats{}, err
	}
	return dayStats(start.Format(time.DateOnly), records), nil
}

// GetWeekStats summarizes ISO week `week` of `year`.
func (s *Storage) GetWeekStats(ctx context.Context, year, week int) (models.WeekStats, error) {
	start := isoWeekStart(year, week)
	records, err := s.GetHistoryByDateRange(ctx, start, start.AddDate(0, 0, 7).Add(-time.Millisecond))
	if err != nil {
		return models.WeekStats{}, err
	}

	stats := models.WeekStats{
		Week:   week,
		Year:   year,
		ByMode: make(map[models.WorkoutMode]int),
	}
	byDate := make(map[string][]models.HistoryRecord)
	for _, rec := range records {
		stats.WorkoutsCount++
		stats.TotalSeconds += rec.DurationSeconds
		stats.ByMode[rec.Mode]++
		date := rec.Date.Format(time.DateOnly)
		byDate[date] = append(byDate[date], rec)
	}
	for date, recs := range byDate {
		stats.DailyStats = append(stats.DailyStats, dayStats(date, recs))
	}
	sort.Slice(stats.DailyStats, func(i, j int) bool {
		return stats.DailyStats[i].Date < stats.DailyStats[j].Date
	})
	return stats, nil
}

func dayStats(date string, records []models.HistoryRecord) models.DayStats {
	stats := models.DayStats{Date: date, Workouts: records}
	for _, rec := range records {
		stats.WorkoutsCount++
		stats.TotalSeconds += rec.DurationSeconds
		stats.TotalRounds += rec.RoundsCompleted
	}
	return stats
}

// ResetAllData removes every history record and saved workout.
func (s *Storage) ResetAllData(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"workout_history", "saved_workouts"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// ExportAllStats renders a plain-text report of the whole history.
func (s *Storage) ExportAllStats(ctx context.Context) (string, error) {
	all, err := s.GetAllHistory(ctx)
	if err != nil {
		return "", err
	}
	saved, err := s.GetSavedWorkouts(ctx)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "WOD Timer - Statistics Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("January 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "=============================\n\n")

	totalSeconds, totalRounds := 0, 0
	byMode := make(map[models.WorkoutMode]int)
	for _, rec := range all {
		totalSeconds += rec.DurationSeconds
		totalRounds += rec.RoundsCompleted
		byMode[rec.Mode]++
	}

	fmt.Fprintf(&b, "OVERALL STATISTICS\n")
	fmt.Fprintf(&b, "------------------\n")
	fmt.Fprintf(&b, "Total Workouts: %d\n", len(all))
	fmt.Fprintf(&b, "Saved Workouts: %d\n", len(saved))
	fmt.Fprintf(&b, "Total Time: %s\n", models.FormatMinutes(totalSeconds))
	fmt.Fprintf(&b, "Total Rounds: %d\n", totalRounds)
	if len(all) > 0 {
		fmt.Fprintf(&b, "Average Workout: %s\n", models.FormatTimeLong(totalSeconds/len(all)))
	}
	b.WriteString("\n")

	if len(byMode) > 0 {
		fmt.Fprintf(&b, "BY MODE\n")
		fmt.Fprintf(&b, "-------\n")
		for _, mode := range models.Modes {
			if n := byMode[mode]; n > 0 {
				fmt.Fprintf(&b, "  %s: %d\n", mode.Label(), n)
			}
		}
		b.WriteString("\n")
	}

	year, week := now.ISOWeek()
	weekStats, err := s.GetWeekStats(ctx, year, week)
	if err == nil && weekStats.WorkoutsCount > 0 {
		fmt.Fprintf(&b, "CURRENT WEEK (Week %d, %d)\n", weekStats.Week, weekStats.Year)
		fmt.Fprintf(&b, "------------------------\n")
		fmt.Fprintf(&b, "Workouts: %d\n", weekStats.WorkoutsCount)
		fmt.Fprintf(&b, "Total Time: %s\n", models.FormatMinutes(weekStats.TotalSeconds))
		for _, day := range weekStats.DailyStats {
			date, _ := time.ParseInLocation(time.DateOnly, day.Date, time.Local)
			fmt.Fprintf(&b, "  %s: %d workouts (%s)\n", date.Format("Monday"), day.WorkoutsCount, models.FormatMinutes(day.TotalSeconds))
		}
		b.WriteString("\n")
	}

	today, err := s.GetDayStats(ctx, now)
	if err == nil && today.WorkoutsCount > 0 {
		fmt.Fprintf(&b, "TODAY (%s)\n", now.Format("Monday, January 2, 2006"))
		fmt.Fprintf(&b, "-------------------------------\n")
		for i, rec := range today.Workouts {
			name := rec.WodName
			if name == "" {
				name = rec.Mode.Label()
			}
			fmt.Fprintf(&b, "  %d. %s at %s: %s, %d rounds\n",
				i+1, name, rec.Date.Format("3:04 PM"), models.FormatTimeLong(rec.DurationSeconds), rec.RoundsCompleted)
		}
	}

	return b.String(), nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func unixMilliOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isoWeekStart returns local midnight on the Monday of ISO week `week`.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.Local)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}
