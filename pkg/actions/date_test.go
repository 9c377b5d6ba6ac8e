package actions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2025-06-09, mid-morning. Resolution must normalize to midnight.
var trigger = time.Date(2025, 6, 9, 10, 30, 0, 0, time.UTC)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveFirstDayOfMonth(t *testing.T) {
	config := DateConfig{DateType: DateFirstDayOfMonth}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.July, 1), resolved)
}

func TestResolveLastDayOfMonth(t *testing.T) {
	config := DateConfig{DateType: DateLastDayOfMonth}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 30), resolved)
}

func TestResolveDaysAfterTrigger(t *testing.T) {
	config := DateConfig{DateType: DateDaysAfterTrigger, DaysCount: 5}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 14), resolved)
}

func TestResolveSpecificDayLaterThisMonth(t *testing.T) {
	config := DateConfig{DateType: DateSpecificDay, DayOfMonth: 20}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 20), resolved)
}

func TestResolveSpecificDayAlreadyPassedRollsToNextMonth(t *testing.T) {
	config := DateConfig{DateType: DateSpecificDay, DayOfMonth: 5}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.July, 5), resolved)
}

func TestResolveSpecificDayClampsToMonthLength(t *testing.T) {
	config := DateConfig{DateType: DateSpecificDay, DayOfMonth: 31}

	// Triggered in February; day 31 clamps to the 28th.
	resolved, err := config.Resolve(day(2025, time.February, 10))
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.February, 28), resolved)
}

func TestResolveRecurringDaily(t *testing.T) {
	config := DateConfig{DateType: DateRecurring, RecurrenceType: RecurDaily}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 10), resolved)
}

func TestResolveRecurringWeekly(t *testing.T) {
	config := DateConfig{DateType: DateRecurring, RecurrenceType: RecurWeekly, DayOfWeek: "friday"}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 13), resolved)
}

func TestResolveRecurringWeeklySameDayMeansNextWeek(t *testing.T) {
	config := DateConfig{DateType: DateRecurring, RecurrenceType: RecurWeekly, DayOfWeek: "monday"}

	// Triggered on a Monday; the next Monday is a full week out.
	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 16), resolved)
}

func TestResolveRecurringBiweekly(t *testing.T) {
	config := DateConfig{DateType: DateRecurring, RecurrenceType: RecurBiweekly, DayOfWeek: "friday"}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 20), resolved)
}

func TestResolveRecurringMonthlyModes(t *testing.T) {
	cases := []struct {
		name     string
		mode     MonthlyMode
		dayOf    int
		expected time.Time
	}{
		{"first day", MonthlyFirstDay, 0, day(2025, time.July, 1)},
		{"last day", MonthlyLastDay, 0, day(2025, time.July, 31)},
		{"specific day", MonthlySpecificDay, 15, day(2025, time.July, 15)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DateConfig{
				DateType:       DateRecurring,
				RecurrenceType: RecurMonthly,
				MonthlyMode:    tc.mode,
				DayOfMonth:     tc.dayOf,
			}

			resolved, err := config.Resolve(trigger)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resolved)
		})
	}
}

func TestResolveRecurringQuarterly(t *testing.T) {
	config := DateConfig{DateType: DateRecurring, RecurrenceType: RecurQuarterly, MonthlyMode: MonthlyFirstDay}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.September, 1), resolved)
}

func TestResolveSkipWeekends(t *testing.T) {
	// 2025-06-14 is a Saturday; skip_weekends lands it on Monday the 16th.
	config := DateConfig{DateType: DateDaysAfterTrigger, DaysCount: 5, SkipWeekends: true}

	resolved, err := config.Resolve(trigger)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 16), resolved)
	assert.Equal(t, time.Monday, resolved.Weekday())
}

func TestResolveRejectsUnknownDateType(t *testing.T) {
	_, err := DateConfig{DateType: "fortnightly"}.Resolve(trigger)
	assert.Error(t, err)
}

func TestResolveRejectsUnknownWeekday(t *testing.T) {
	config := DateConfig{DateType: DateRecurring, RecurrenceType: RecurWeekly, DayOfWeek: "someday"}

	_, err := config.Resolve(trigger)
	assert.Error(t, err)
}
