package calendar

import "time"

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	TARGET CalendarID = "TARGET"
	JPN    CalendarID = "JPN"
	USD    CalendarID = "USD"
	// WEEKEND is a weekend-only calendar with no listed holidays,
	// useful for synthetic deals and tests.
	WEEKEND CalendarID = "WEEKEND"
)

// holidays maps a calendar to its listed holiday dates (YYYY-MM-DD).
// Sets are empty by default; RegisterHolidays installs venue data.
var holidays = map[CalendarID]map[string]struct{}{}

// RegisterHolidays adds listed holidays (YYYY-MM-DD) to a calendar.
func RegisterHolidays(cal CalendarID, dates []string) {
	set := holidays[cal]
	if set == nil {
		set = make(map[string]struct{}, len(dates))
		holidays[cal] = set
	}
	for _, d := range dates {
		set[d] = struct{}{}
	}
}

// IsBusinessDay checks weekends and the calendar's holiday set.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	_, hol := holidays[cal][t.Format("2006-01-02")]
	return !hol
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
