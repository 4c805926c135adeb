package availability

import (
	"testing"
	"time"
)

func TestMonthDaysAndWeekday(t *testing.T) {
	tests := []struct {
		name    string
		month   Month
		days    int
		weekday time.Weekday
	}{
		{"june 2024", Month{2024, time.June}, 30, time.Saturday},
		{"february leap", Month{2024, time.February}, 29, time.Thursday},
		{"february non-leap", Month{2023, time.February}, 28, time.Wednesday},
		{"december", Month{2024, time.December}, 31, time.Sunday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.month.Days(); got != tt.days {
				t.Fatalf("Days() = %d, want %d", got, tt.days)
			}
			if got := tt.month.FirstWeekday(); got != tt.weekday {
				t.Fatalf("FirstWeekday() = %s, want %s", got, tt.weekday)
			}
		})
	}
}

func TestMonthNavigation(t *testing.T) {
	dec := Month{2024, time.December}
	if got := dec.Next(); got != (Month{2025, time.January}) {
		t.Fatalf("Next() = %+v", got)
	}
	jan := Month{2025, time.January}
	if got := jan.Prev(); got != (Month{2024, time.December}) {
		t.Fatalf("Prev() = %+v", got)
	}
}

func TestMonthAfter(t *testing.T) {
	if !(Month{2025, time.January}).After(Month{2024, time.December}) {
		t.Fatal("jan 2025 should be after dec 2024")
	}
	if (Month{2024, time.June}).After(Month{2024, time.June}) {
		t.Fatal("a month is not after itself")
	}
	if (Month{2024, time.May}).After(Month{2024, time.June}) {
		t.Fatal("may is not after june")
	}
}

func TestMonthContains(t *testing.T) {
	m := Month{2024, time.June}
	if !m.Contains("2024-06-15") {
		t.Fatal("expected 2024-06-15 in june 2024")
	}
	if m.Contains("2024-07-01") {
		t.Fatal("2024-07-01 is not in june 2024")
	}
	if m.Contains("not-a-date") {
		t.Fatal("garbage dates are never contained")
	}
}

func TestMonthDateFormatting(t *testing.T) {
	m := Month{2024, time.June}
	if got := m.Date(5); got != "2024-06-05" {
		t.Fatalf("Date(5) = %s", got)
	}
	if got := m.Key(); got != "2024-06" {
		t.Fatalf("Key() = %s", got)
	}
}

func TestDaySet(t *testing.T) {
	s := NewDaySet("2024-06-05", "2024-06-06")
	if !s.Has("2024-06-05") || !s.Has("2024-06-06") {
		t.Fatal("expected both seeded dates")
	}
	if s.Has("2024-06-07") {
		t.Fatal("unexpected membership")
	}
	if len(s.Dates()) != 2 {
		t.Fatalf("Dates() = %v", s.Dates())
	}
}
