package models

import (
	"time"
)

// HistoryRecord is one finished workout as stored by the history log.
type HistoryRecord struct {
	ID              string      `json:"id"`
	Date            time.Time   `json:"date"`
	Mode            WorkoutMode `json:"mode"`
	WodName         string      `json:"wod_name,omitempty"`
	DurationSeconds int         `json:"duration_seconds"`
	RoundsCompleted int         `json:"rounds_completed"`
	Notes           string      `json:"notes,omitempty"`
	PhotoPath       string      `json:"photo_path,omitempty"`
	Plan            WorkoutPlan `json:"plan"`
}

// NewHistoryRecord builds a record from a finished session's totals.
func NewHistoryRecord(plan WorkoutPlan, elapsedSeconds, rounds int, at time.Time) HistoryRecord {
	return HistoryRecord{
		Date:            at,
		Mode:            plan.Mode,
		DurationSeconds: elapsedSeconds,
		RoundsCompleted: rounds,
		Plan:            plan.Clone(),
	}
}

// SavedWorkout is a named plan template, e.g. "Murph" or "Tabata 8x".
type SavedWorkout struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Mode        WorkoutMode `json:"mode"`
	Description string      `json:"description,omitempty"`
	PhotoPath   string      `json:"photo_path,omitempty"`
	Plan        WorkoutPlan `json:"plan"`
	CreatedAt   time.Time   `json:"created_at"`
	LastUsed    time.Time   `json:"last_used,omitempty"`
}

type DayStats struct {
	Date          string          `json:"date"` // YYYY-MM-DD format
	WorkoutsCount int             `json:"workouts_count"`
	TotalSeconds  int             `json:"total_seconds"`
	TotalRounds   int             `json:"total_rounds"`
	Workouts      []HistoryRecord `json:"workouts"`
}

type WeekStats struct {
	Week          int                 `json:"week"` // ISO week number
	Year          int                 `json:"year"`
	WorkoutsCount int                 `json:"workouts_count"`
	TotalSeconds  int                 `json:"total_seconds"`
	ByMode        map[WorkoutMode]int `json:"by_mode"`
	DailyStats    []DayStats          `json:"daily_stats"`
}
