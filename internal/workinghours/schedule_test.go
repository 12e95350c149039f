package workinghours

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func uniformWeek(open, close string) map[string][]string {
	raw := make(map[string][]string, len(Weekdays))
	for _, day := range Weekdays {
		raw[day] = []string{open, close}
	}
	return raw
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("08:52")
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("08:52"), got)

	got, err = ParseTimeOfDay("9:05")
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:05"), got)

	for _, bad := range []string{"", "24:00", "12:60", "noon", "12-30"} {
		_, err := ParseTimeOfDay(bad)
		var formatErr *FormatError
		assert.ErrorAs(t, err, &formatErr, "input %q", bad)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	}
}

func TestValidateWeekSchedule(t *testing.T) {
	t.Run("valid schedule is normalized", func(t *testing.T) {
		raw := uniformWeek("8:52", "15:02")
		raw["Sun"] = []string{}

		schedule, err := ValidateWeekSchedule(raw)
		require.NoError(t, err)
		assert.Equal(t, []types.TimeString{"08:52", "15:02"}, schedule["Mon"])
		assert.Empty(t, schedule["Sun"])
	})

	t.Run("missing day", func(t *testing.T) {
		raw := uniformWeek("09:00", "18:00")
		delete(raw, "Wed")

		_, err := ValidateWeekSchedule(raw)
		var missing *MissingDayError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "Wed", missing.Day)
	})

	t.Run("day keys are case sensitive", func(t *testing.T) {
		raw := uniformWeek("09:00", "18:00")
		delete(raw, "Mon")
		raw["mon"] = []string{"09:00", "18:00"}

		_, err := ValidateWeekSchedule(raw)
		var missing *MissingDayError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "Mon", missing.Day)
	})

	t.Run("wrong number of marks", func(t *testing.T) {
		raw := uniformWeek("09:00", "18:00")
		raw["Tue"] = []string{"09:00"}

		_, err := ValidateWeekSchedule(raw)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "Tue", formatErr.Day)
	})

	t.Run("malformed time", func(t *testing.T) {
		raw := uniformWeek("09:00", "18:00")
		raw["Fri"] = []string{"09:00", "6pm"}

		_, err := ValidateWeekSchedule(raw)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "Fri", formatErr.Day)
	})

	t.Run("open after close", func(t *testing.T) {
		raw := uniformWeek("09:00", "18:00")
		raw["Sat"] = []string{"18:00", "09:00"}

		_, err := ValidateWeekSchedule(raw)
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, "Sat", rangeErr.Day)
		assert.True(t, errors.Is(err, ErrInvalidSchedule))
	})

	t.Run("open equals close collapses to closed on any day", func(t *testing.T) {
		for _, day := range Weekdays {
			raw := uniformWeek("09:00", "18:00")
			raw[day] = []string{"12:00", "12:00"}

			schedule, err := ValidateWeekSchedule(raw)
			require.NoError(t, err)
			assert.Empty(t, schedule[day], day)
			assert.Equal(t, []string{}, schedule.Raw()[day], day)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		raw := map[string][]string{
			"Mon": {"8:00", "12:30"},
			"Tue": {"09:15", "09:15"},
			"Wed": {},
			"Thu": {"00:00", "23:59"},
			"Fri": {"10:00", "19:00"},
			"Sat": {"11:00", "14:00"},
			"Sun": {},
		}

		first, err := ValidateWeekSchedule(raw)
		require.NoError(t, err)

		second, err := ValidateWeekSchedule(first.Raw())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestIsWithinWindow(t *testing.T) {
	schedule, err := ValidateWeekSchedule(uniformWeek("08:52", "15:02"))
	require.NoError(t, err)

	// 2024-01-01 - понедельник
	monday := func(hour, minute int) time.Time {
		return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
	}

	assert.True(t, IsWithinWindow(schedule, monday(9, 0)))
	assert.False(t, IsWithinWindow(schedule, monday(7, 0)))
	assert.True(t, IsWithinWindow(schedule, monday(8, 52)), "open is inclusive")
	assert.False(t, IsWithinWindow(schedule, monday(15, 2)), "close is exclusive")
	assert.True(t, IsWithinWindow(schedule, monday(15, 1)))
}

func TestGetWorkingWindow(t *testing.T) {
	raw := uniformWeek("09:00", "18:00")
	raw["Sun"] = []string{}
	schedule, err := ValidateWeekSchedule(raw)
	require.NoError(t, err)

	window, ok := GetWorkingWindow(schedule, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, Window{Open: "09:00", Close: "18:00"}, window)

	sunday := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	_, ok = GetWorkingWindow(schedule, sunday)
	assert.False(t, ok)
	assert.False(t, IsWithinWindow(schedule, sunday))
}
