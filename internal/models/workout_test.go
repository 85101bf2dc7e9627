package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tabata() WorkoutPlan {
	return WorkoutPlan{Mode: ModeCustom, CustomTotalRounds: 2}.
		WithInterval(CustomInterval{Name: "Work", DurationSeconds: 40, Kind: IntervalWork}).
		WithInterval(CustomInterval{Name: "Rest", DurationSeconds: 20, Kind: IntervalRest})
}

func TestWithIntervalAssignsOrderAndID(t *testing.T) {
	plan := tabata()
	require.Len(t, plan.CustomIntervals, 2)
	assert.Equal(t, 0, plan.CustomIntervals[0].Order)
	assert.Equal(t, 1, plan.CustomIntervals[1].Order)
	assert.NotEqual(t, plan.CustomIntervals[0].ID, plan.CustomIntervals[1].ID)
}

func TestWithIntervalDoesNotMutateReceiver(t *testing.T) {
	base := tabata()
	grown := base.WithInterval(CustomInterval{Name: "Sprint", DurationSeconds: 10, Kind: IntervalWork})

	assert.Len(t, base.CustomIntervals, 2)
	assert.Len(t, grown.CustomIntervals, 3)
	assert.Equal(t, 2, grown.CustomIntervals[2].Order)
}

func TestWithoutIntervalRenumbers(t *testing.T) {
	plan := tabata().
		WithInterval(CustomInterval{Name: "Sprint", DurationSeconds: 10, Kind: IntervalWork})

	trimmed := plan.WithoutInterval(0)
	require.Len(t, trimmed.CustomIntervals, 2)
	assert.Equal(t, "Rest", trimmed.CustomIntervals[0].Name)
	assert.Equal(t, 0, trimmed.CustomIntervals[0].Order)
	assert.Equal(t, 1, trimmed.CustomIntervals[1].Order)
	assert.Len(t, plan.CustomIntervals, 3, "original plan must be untouched")

	assert.Equal(t, plan, plan.WithoutInterval(7))
	require.NoError(t, trimmed.Validate())
}

func TestValidateConsultsOnlyModeFields(t *testing.T) {
	plan := WorkoutPlan{Mode: ModeAMRAP, AmrapDurationSeconds: 600, EmomRounds: -4}
	assert.NoError(t, plan.Validate())

	plan = WorkoutPlan{Mode: ModeEMOM, EmomRounds: -1}
	assert.True(t, errors.Is(plan.Validate(), ErrInvalidPlan))
}

func TestValidateRejectsBrokenOrder(t *testing.T) {
	plan := WorkoutPlan{Mode: ModeCustom, CustomTotalRounds: 1, CustomIntervals: []CustomInterval{
		{Name: "Work", DurationSeconds: 30, Order: 1},
	}}
	assert.ErrorIs(t, plan.Validate(), ErrInvalidPlan)

	plan = WorkoutPlan{Mode: "YOGA"}
	assert.ErrorIs(t, plan.Validate(), ErrInvalidPlan)
}

func TestValidateAcceptsEmptyCustomPlan(t *testing.T) {
	assert.NoError(t, WorkoutPlan{Mode: ModeCustom, CustomTotalRounds: 3}.Validate())
}

func TestTotalSeconds(t *testing.T) {
	tests := []struct {
		name    string
		plan    WorkoutPlan
		total   int
		bounded bool
	}{
		{"amrap", WorkoutPlan{Mode: ModeAMRAP, AmrapDurationSeconds: 60}, 60, true},
		{"emom", WorkoutPlan{Mode: ModeEMOM, EmomRounds: 3}, 180, true},
		{"for time capped", WorkoutPlan{Mode: ModeForTime, ForTimeHasCap: true, ForTimeCapSeconds: 900}, 900, true},
		{"for time open", WorkoutPlan{Mode: ModeForTime, ForTimeCapSeconds: 900}, 0, false},
		{"custom", tabata(), 120, true},
		{"counter", WorkoutPlan{Mode: ModeCounter}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, bounded := tt.plan.TotalSeconds()
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.bounded, bounded)
		})
	}
}

func TestIntervalAtBoundaryBelongsToNextInterval(t *testing.T) {
	plan := tabata()

	idx, start := plan.IntervalAt(39)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, start)

	idx, start = plan.IntervalAt(40)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 40, start)

	idx, _ = plan.IntervalAt(60)
	assert.Equal(t, -1, idx)
}

func TestIntervalAtSkipsZeroLengthIntervals(t *testing.T) {
	plan := WorkoutPlan{Mode: ModeCustom, CustomTotalRounds: 1}.
		WithInterval(CustomInterval{Name: "Transition", DurationSeconds: 0, Kind: IntervalRest}).
		WithInterval(CustomInterval{Name: "Work", DurationSeconds: 30, Kind: IntervalWork})

	idx, _ := plan.IntervalAt(0)
	assert.Equal(t, 1, idx)
}

func TestDefaultPlans(t *testing.T) {
	for _, mode := range Modes {
		plan := DefaultPlan(mode)
		assert.Equal(t, mode, plan.Mode)
		assert.NoError(t, plan.Validate(), mode)
	}
	assert.Equal(t, 20*60, DefaultPlan(ModeAMRAP).AmrapDurationSeconds)
	assert.Equal(t, 60, DefaultPlan(ModeCustom).RoundSeconds())
}

func TestParseWorkoutMode(t *testing.T) {
	mode, err := ParseWorkoutMode(" for_time ")
	require.NoError(t, err)
	assert.Equal(t, ModeForTime, mode)

	_, err = ParseWorkoutMode("tabata")
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "01:05", FormatTime(65))
	assert.Equal(t, "00:00", FormatTime(-3))
	assert.Equal(t, "01:00:05", FormatTimeLong(3605))
	assert.Equal(t, "59:59", FormatTimeLong(3599))
	assert.Equal(t, "1h 2m", FormatMinutes(3720))
}
