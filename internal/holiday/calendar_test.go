package holiday

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

func TestNoneCalendar(t *testing.T) {
	assert.False(t, None.IsHoliday("2024-12-25"))
	assert.Empty(t, None.HolidayName("2024-12-25"))
}

func TestStaticCalendar(t *testing.T) {
	cal := Static{"2024-12-25": "Natal"}

	assert.True(t, cal.IsHoliday("2024-12-25"))
	assert.Equal(t, "Natal", cal.HolidayName("2024-12-25"))
	assert.False(t, cal.IsHoliday("2024-12-26"))
}

type fakeHolidayAPI struct {
	calls    int
	holidays []upstream.Holiday
	err      error
}

func (f *fakeHolidayAPI) GetHolidays(ctx context.Context, year int) ([]upstream.Holiday, error) {
	f.calls++
	return f.holidays, f.err
}

func TestService_CachesPerYear(t *testing.T) {
	api := &fakeHolidayAPI{holidays: []upstream.Holiday{
		{Date: "2024-12-25T00:00:00Z", Name: "Natal"},
		{Date: "2024-01-01", Name: "Confraternização Universal"},
	}}
	svc := NewService(api, logging.Default())

	require.True(t, svc.IsHoliday("2024-12-25"), "RFC3339 date should normalize and match")
	require.True(t, svc.IsHoliday("2024-01-01"), "bare date should match")
	assert.False(t, svc.IsHoliday("2024-06-04"))
	assert.Equal(t, 1, api.calls, "year should be fetched once")
}

func TestService_FailsOpen(t *testing.T) {
	api := &fakeHolidayAPI{err: errors.New("boom")}
	svc := NewService(api, logging.Default())

	assert.False(t, svc.IsHoliday("2024-12-25"), "failed fetch fails open")
	svc.IsHoliday("2024-12-25")
	assert.Equal(t, 1, api.calls, "failure is cached")
}
