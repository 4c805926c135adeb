// Package availability implements the storefront's date/time availability
// core: monthly unavailable-day resolution, the first-available-date search,
// and daily slot loading with past-time filtering.
package availability

import (
	"fmt"
	"time"
)

// ISODate is the wire format for calendar dates (YYYY-MM-DD). ISO date
// strings order lexicographically, which the search code relies on.
const ISODate = "2006-01-02"

// Month identifies one displayed calendar month. It is an immutable value;
// navigation replaces it wholesale.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// First returns midnight UTC on the first day of the month. The UTC anchor
// is only used for calendar arithmetic, never for wall-clock comparisons.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// FirstWeekday returns the weekday of the 1st (Sunday = 0).
func (m Month) FirstWeekday() time.Weekday {
	return m.First().Weekday()
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// After reports whether m is strictly after other.
func (m Month) After(other Month) bool {
	if m.Year != other.Year {
		return m.Year > other.Year
	}
	return m.Month > other.Month
}

// Key renders the month as YYYY-MM, used in cache keys and logs.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Date renders day-of-month as an ISO date within m.
func (m Month) Date(day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), day)
}

// Contains reports whether the ISO date falls inside m.
func (m Month) Contains(date string) bool {
	t, err := time.Parse(ISODate, date)
	if err != nil {
		return false
	}
	return t.Year() == m.Year && t.Month() == m.Month
}

// DaySet is a set of ISO dates with zero bookable slots. It is rebuilt
// wholesale on every successful monthly fetch and scoped to exactly one
// month.
type DaySet map[string]struct{}

// NewDaySet builds a set from ISO date strings.
func NewDaySet(dates ...string) DaySet {
	s := make(DaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s DaySet) Has(date string) bool {
	_, ok := s[date]
	return ok
}

// Dates returns the member dates in unspecified order.
func (s DaySet) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}
