// Package holiday marks calendar dates as holidays. The storefront ships
// with holiday marking disabled, since the upstream already folds holidays
// into its unavailable-day aggregates. The interface is kept so the lookup
// can be re-enabled without touching the availability core.
package holiday

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// Calendar answers whether an ISO date (YYYY-MM-DD) is a holiday.
type Calendar interface {
	IsHoliday(date string) bool
	HolidayName(date string) string
}

// None is the default calendar: no date is ever a holiday.
var None Calendar = noneCalendar{}

type noneCalendar struct{}

func (noneCalendar) IsHoliday(string) bool     { return false }
func (noneCalendar) HolidayName(string) string { return "" }

// Static is a fixed date→name calendar, mainly for tests and seeded data.
type Static map[string]string

func (s Static) IsHoliday(date string) bool {
	_, ok := s[date]
	return ok
}

func (s Static) HolidayName(date string) string {
	return s[date]
}

// API is the slice of the upstream client the service calendar needs.
type API interface {
	GetHolidays(ctx context.Context, year int) ([]upstream.Holiday, error)
}

// Service is an upstream-backed calendar with a per-year in-process cache.
// A failed year fetch caches an empty set; holidays fail open like the rest
// of the availability stack.
type Service struct {
	api    API
	logger *logging.Logger

	mu    sync.Mutex
	years map[int]Static
}

// NewService creates an upstream-backed holiday calendar.
func NewService(api API, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{api: api, logger: logger, years: make(map[int]Static)}
}

func (s *Service) IsHoliday(date string) bool {
	return s.yearFor(date).IsHoliday(date)
}

func (s *Service) HolidayName(date string) string {
	return s.yearFor(date).HolidayName(date)
}

func (s *Service) yearFor(date string) Static {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.years[year]; ok {
		return cached
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := s.api.GetHolidays(ctx, year)
	if err != nil {
		s.logger.Warn("holiday fetch failed", "year", year, "error", err)
		s.years[year] = Static{}
		return s.years[year]
	}

	cal := make(Static, len(entries))
	for _, h := range entries {
		// Upstream dates may carry a time component; normalize to ISO date.
		if t, err := time.Parse(time.RFC3339, h.Date); err == nil {
			cal[t.Format("2006-01-02")] = h.Name
			continue
		}
		if len(h.Date) >= 10 {
			cal[h.Date[:10]] = h.Name
		}
	}
	s.years[year] = cal
	return cal
}
