// Package dates provides the pure date calculations behind occasion
// tracking: parsing heterogeneous date strings, day-offset computation, and
// reminder schedules.
package dates

import (
	"fmt"
	"strings"
	"time"

	"giftplanner/internal/core"
)

// Clock abstracts time.Now() to allow deterministic testing of day math.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Accepted input layouts, tried in order. The first layout that parses wins,
// so an ambiguous string takes the earliest-listed interpretation.
var layouts = []string{
	"2006-01-02",      // 2024-12-25
	"01/02/2006",      // 12/25/2024
	"02-01-2006",      // 25-12-2024
	"January 2, 2006", // December 25, 2024
	"Jan 2, 2006",     // Dec 25, 2024
}

// Parse converts a date string in one of the accepted layouts into a
// calendar date. Failures wrap core.ErrParse.
func Parse(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.Parsef("could not parse date %q, use format YYYY-MM-DD", s)
}

type DaysUntilResult struct {
	DaysUntil     int    `json:"daysUntil"`
	TargetDate    string `json:"targetDate"`
	FormattedDate string `json:"formattedDate"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// DaysUntil computes the whole-day offset from today to the given date.
// The offset is negative for past dates. Status boundaries: day 7 is still
// this_week and day 30 is still this_month; both upper bounds are inclusive.
func DaysUntil(clock Clock, s string) (DaysUntilResult, error) {
	target, err := Parse(s)
	if err != nil {
		return DaysUntilResult{}, err
	}

	days := civilDayDiff(clock.Now(), target)

	var status string
	switch {
	case days < 0:
		status = "past"
	case days == 0:
		status = "today"
	case days <= 7:
		status = "this_week"
	case days <= 30:
		status = "this_month"
	default:
		status = "future"
	}

	formatted := target.Format("January 2, 2006")
	return DaysUntilResult{
		DaysUntil:     days,
		TargetDate:    target.Format("2006-01-02"),
		FormattedDate: formatted,
		Status:        status,
		Message:       formatMessage(days, formatted),
	}, nil
}

type Reminder struct {
	DaysBefore   int    `json:"daysBefore"`
	ReminderDate string `json:"reminderDate"`
	Formatted    string `json:"formatted"`
}

// DefaultReminderOffsets is the reminder schedule applied when no explicit
// offsets are given.
var DefaultReminderOffsets = []int{14, 7, 3, 1}

// ReminderDates returns one reminder per offset, target date minus the
// offset, preserving the order the offsets were given in.
func ReminderDates(s string, offsets []int) ([]Reminder, error) {
	target, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		offsets = DefaultReminderOffsets
	}

	reminders := make([]Reminder, 0, len(offsets))
	for _, days := range offsets {
		d := target.AddDate(0, 0, -days)
		reminders = append(reminders, Reminder{
			DaysBefore:   days,
			ReminderDate: d.Format("2006-01-02"),
			Formatted:    d.Format("January 2, 2006"),
		})
	}
	return reminders, nil
}

// civilDayDiff counts calendar days between two instants, ignoring the
// time-of-day components entirely.
func civilDayDiff(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func formatMessage(days int, formatted string) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%s was %d days ago", formatted, -days)
	case days == 0:
		return fmt.Sprintf("Today is %s!", formatted)
	case days == 1:
		return fmt.Sprintf("%s is tomorrow!", formatted)
	case days <= 7:
		return fmt.Sprintf("%s is in %d days (this week)", formatted, days)
	case days <= 30:
		return fmt.Sprintf("%s is in %d days (about %d weeks)", formatted, days, days/7)
	default:
		months := days / 30
		if months == 1 {
			return fmt.Sprintf("%s is in about 1 month", formatted)
		}
		return fmt.Sprintf("%s is in about %d months", formatted, months)
	}
}
