package actions

import (
	"fmt"
	"time"
)

type DateType string

const (
	DateFirstDayOfMonth  DateType = "first_day_of_month"
	DateLastDayOfMonth   DateType = "last_day_of_month"
	DateDaysAfterTrigger DateType = "days_after_trigger"
	DateSpecificDay      DateType = "specific_day"
	DateRecurring        DateType = "recurring"
)

type RecurrenceType string

const (
	RecurDaily     RecurrenceType = "daily"
	RecurWeekly    RecurrenceType = "weekly"
	RecurBiweekly  RecurrenceType = "biweekly"
	RecurMonthly   RecurrenceType = "monthly"
	RecurQuarterly RecurrenceType = "quarterly"
)

type MonthlyMode string

const (
	MonthlyFirstDay    MonthlyMode = "first_day"
	MonthlyLastDay     MonthlyMode = "last_day"
	MonthlySpecificDay MonthlyMode = "specific_day"
)

// DateConfig describes how a due or start date is derived from the moment a
// rule fires. The recurring variants also carry completion behavior consumed
// by the scheduler when the recurring task is closed.
type DateConfig struct {
	DateType DateType `json:"date_type"`

	DaysCount  int `json:"days_count,omitempty"`
	DayOfMonth int `json:"day_of_month,omitempty"`

	RecurrenceType RecurrenceType `json:"recurrence_type,omitempty"`
	DayOfWeek      string         `json:"day_of_week,omitempty"`
	MonthlyMode    MonthlyMode    `json:"monthly_mode,omitempty"`

	SkipWeekends  bool `json:"skip_weekends,omitempty"`
	RepeatForever bool `json:"repeat_forever,omitempty"`

	OnCompleteAction  string `json:"on_complete_action,omitempty"`
	ResetStatusID     string `json:"reset_status_id,omitempty"`
	TriggerOnStatusID string `json:"trigger_on_status_id,omitempty"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Resolve computes the concrete date this config yields relative to from,
// normally the trigger time. Results are normalized to midnight in from's
// location.
func (c DateConfig) Resolve(from time.Time) (time.Time, error) {
	day := midnight(from)

	var resolved time.Time

	switch c.DateType {
	case DateFirstDayOfMonth:
		resolved = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, 1, 0)
	case DateLastDayOfMonth:
		resolved = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, 1, -1)
	case DateDaysAfterTrigger:
		resolved = day.AddDate(0, 0, c.DaysCount)
	case DateSpecificDay:
		resolved = specificDay(day, c.DayOfMonth)
		if !resolved.After(day) {
			resolved = specificDay(day.AddDate(0, 1, 0), c.DayOfMonth)
		}
	case DateRecurring:
		next, err := c.nextOccurrence(day)
		if err != nil {
			return time.Time{}, err
		}

		resolved = next
	default:
		return time.Time{}, fmt.Errorf("unknown date type %q", c.DateType)
	}

	if c.SkipWeekends {
		resolved = rollPastWeekend(resolved)
	}

	return resolved, nil
}

func (c DateConfig) nextOccurrence(day time.Time) (time.Time, error) {
	switch c.RecurrenceType {
	case RecurDaily:
		return day.AddDate(0, 0, 1), nil
	case RecurWeekly:
		return nextWeekday(day, c.DayOfWeek)
	case RecurBiweekly:
		next, err := nextWeekday(day, c.DayOfWeek)
		if err != nil {
			return time.Time{}, err
		}

		return next.AddDate(0, 0, 7), nil
	case RecurMonthly:
		return c.monthlyOccurrence(day, 1), nil
	case RecurQuarterly:
		return c.monthlyOccurrence(day, 3), nil
	default:
		return time.Time{}, fmt.Errorf("unknown recurrence type %q", c.RecurrenceType)
	}
}

func (c DateConfig) monthlyOccurrence(day time.Time, months int) time.Time {
	base := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, months, 0)

	switch c.MonthlyMode {
	case MonthlyLastDay:
		return base.AddDate(0, 1, -1)
	case MonthlySpecificDay:
		return specificDay(base, c.DayOfMonth)
	default:
		return base
	}
}

func nextWeekday(day time.Time, name string) (time.Time, error) {
	target, ok := weekdays[name]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown day of week %q", name)
	}

	delta := (int(target) - int(day.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}

	return day.AddDate(0, 0, delta), nil
}

// specificDay clamps the requested day to the month's length, so day 31 in
// February lands on the 28th or 29th rather than spilling into March.
func specificDay(in time.Time, dayOfMonth int) time.Time {
	firstOfNext := time.Date(in.Year(), in.Month(), 1, 0, 0, 0, 0, in.Location()).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()

	if dayOfMonth < 1 {
		dayOfMonth = 1
	}

	if dayOfMonth > lastDay {
		dayOfMonth = lastDay
	}

	return time.Date(in.Year(), in.Month(), dayOfMonth, 0, 0, 0, 0, in.Location())
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func rollPastWeekend(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}
