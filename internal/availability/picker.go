package availability

import (
	"time"

	"github.com/barberflow/booking-storefront/internal/holiday"
)

// IsSelectable reports whether a calendar day can be picked: not strictly
// before today (date-only comparison), not a holiday, and not in the
// unavailable set. ISO strings compare lexicographically, so plain string
// comparison is the date-only comparison.
func IsSelectable(date, today string, unavailable DaySet, cal holiday.Calendar) bool {
	if date < today {
		return false
	}
	if cal != nil && cal.IsHoliday(date) {
		return false
	}
	return !unavailable.Has(date)
}

// FirstSelectable searches forward from max(today, first of month) for the
// first selectable date within the displayed month. ok is false when the
// month is exhausted; the caller then advances the month and runs another
// resolver cycle.
func FirstSelectable(today string, m Month, unavailable DaySet, cal holiday.Calendar) (string, bool) {
	start := 1
	if m.Contains(today) {
		t, err := time.Parse(ISODate, today)
		if err == nil {
			start = t.Day()
		}
	} else if m.Date(m.Days()) < today {
		// Entire month is in the past.
		return "", false
	}

	for day := start; day <= m.Days(); day++ {
		date := m.Date(day)
		if IsSelectable(date, today, unavailable, cal) {
			return date, true
		}
	}
	return "", false
}

// HorizonExceeded reports whether the displayed month has moved past the
// bounded search window that started at searchStart. It caps the repeated
// month-advance process so the search always terminates.
func HorizonExceeded(searchStart string, m Month, horizonDays int) bool {
	start, err := time.Parse(ISODate, searchStart)
	if err != nil {
		return false
	}
	limit := start.AddDate(0, 0, horizonDays)
	return m.First().After(limit)
}
