package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

type fakeSlotsAPI struct {
	resp  *upstream.FreeSlotsResponse
	err   error
	calls []SlotParams
}

func (f *fakeSlotsAPI) GetFreeSlots(ctx context.Context, shopID, barberID, serviceID, date string) (*upstream.FreeSlotsResponse, error) {
	f.calls = append(f.calls, SlotParams{ShopID: shopID, BarberID: barberID, ServiceID: serviceID, Date: date})
	return f.resp, f.err
}

func TestLoader_ShortCircuitsOnIncompleteParams(t *testing.T) {
	api := &fakeSlotsAPI{}
	loader := NewLoader(api, logging.Default())

	day := loader.Load(context.Background(), SlotParams{ShopID: "shop1", Date: "2024-06-04"})
	if len(api.calls) != 0 {
		t.Fatal("incomplete params must not hit the network")
	}
	if len(day.Slots) != 0 || day.Warning != "" {
		t.Fatalf("day = %+v, want empty steady state", day)
	}
}

func TestLoader_ReplacesWholesale(t *testing.T) {
	api := &fakeSlotsAPI{resp: &upstream.FreeSlotsResponse{Slots: []upstream.TimeSlot{
		{Time: "10:00", IsBooked: false},
		{Time: "14:00", IsBooked: true},
	}}}
	loader := NewLoader(api, logging.Default())

	params := SlotParams{ShopID: "shop1", BarberID: "b1", ServiceID: "s1", Date: "2024-06-04"}
	day := loader.Load(context.Background(), params)
	if day.Params != params {
		t.Fatalf("result params = %+v, want the issued tuple", day.Params)
	}
	if len(day.Slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(day.Slots))
	}
}

func TestLoader_FailureYieldsEmptyDayWithWarning(t *testing.T) {
	api := &fakeSlotsAPI{err: errors.New("upstream down")}
	loader := NewLoader(api, logging.Default())

	day := loader.Load(context.Background(), SlotParams{ShopID: "shop1", BarberID: "b1", ServiceID: "s1", Date: "2024-06-04"})
	if len(day.Slots) != 0 {
		t.Fatal("failed fetch must yield empty slots")
	}
	if day.Warning != WarnSlotsUnavailable {
		t.Fatalf("warning = %q", day.Warning)
	}
	if len(api.calls) != 1 {
		t.Fatalf("calls = %d, want 1 (no retry)", len(api.calls))
	}
}

func TestLoader_HolidayReply(t *testing.T) {
	api := &fakeSlotsAPI{resp: &upstream.FreeSlotsResponse{
		IsHoliday:   true,
		HolidayName: "Natal",
		Slots:       []upstream.TimeSlot{{Time: "10:00"}},
	}}
	loader := NewLoader(api, logging.Default())

	day := loader.Load(context.Background(), SlotParams{ShopID: "shop1", BarberID: "b1", ServiceID: "s1", Date: "2024-12-25"})
	if !day.Holiday || day.HolidayName != "Natal" {
		t.Fatalf("day = %+v, want holiday", day)
	}
	if len(day.Slots) != 0 {
		t.Fatal("holiday days present no slots")
	}
}

func TestVisibleSlots_FiltersPastTimesToday(t *testing.T) {
	slots := []upstream.TimeSlot{
		{Time: "09:00", IsBooked: false},
		{Time: "10:00", IsBooked: false},
		{Time: "14:00", IsBooked: true},
	}
	now := time.Date(2024, 6, 4, 11, 0, 0, 0, time.UTC)

	visible := VisibleSlots(slots, "2024-06-04", now)
	if len(visible) != 1 {
		t.Fatalf("len(visible) = %d, want 1", len(visible))
	}
	if visible[0].Time != "14:00" || !visible[0].IsBooked {
		t.Fatalf("visible = %+v; booked flag must survive filtering", visible)
	}
	// The stored list is untouched.
	if len(slots) != 3 {
		t.Fatal("filter must not mutate the stored list")
	}
}

func TestVisibleSlots_ExactCurrentMinuteExcluded(t *testing.T) {
	slots := []upstream.TimeSlot{{Time: "09:00"}}
	now := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	if got := VisibleSlots(slots, "2024-06-04", now); len(got) != 0 {
		t.Fatalf("09:00 at 09:00 must be excluded (strictly-after rule), got %v", got)
	}
	// One minute later it is clearly past.
	now = time.Date(2024, 6, 4, 9, 1, 0, 0, time.UTC)
	if got := VisibleSlots(slots, "2024-06-04", now); len(got) != 0 {
		t.Fatalf("09:00 at 09:01 must be excluded, got %v", got)
	}
}

func TestVisibleSlots_NonTodayUnfiltered(t *testing.T) {
	slots := []upstream.TimeSlot{{Time: "09:00"}, {Time: "10:00"}}
	now := time.Date(2024, 6, 4, 23, 59, 0, 0, time.UTC)
	if got := VisibleSlots(slots, "2024-06-05", now); len(got) != 2 {
		t.Fatalf("future dates pass through unfiltered, got %v", got)
	}
}

func TestVisibleSlots_MalformedTimesDropped(t *testing.T) {
	slots := []upstream.TimeSlot{{Time: "garbage"}, {Time: "12:30"}}
	now := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	got := VisibleSlots(slots, "2024-06-04", now)
	if len(got) != 1 || got[0].Time != "12:30" {
		t.Fatalf("got %v", got)
	}
}
