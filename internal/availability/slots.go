package availability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// WarnSlotsUnavailable is surfaced when the daily slot fetch fails. The
// loader does not retry; the day simply shows no times.
const WarnSlotsUnavailable = "Could not load times for this day. Please try another date."

// SlotParams is the tuple a daily slot fetch is keyed on.
type SlotParams struct {
	ShopID    string
	BarberID  string
	ServiceID string
	Date      string // ISO date
}

// Complete reports whether the tuple identifies a fetchable day.
func (p SlotParams) Complete() bool {
	return p.ShopID != "" && p.BarberID != "" && p.Date != ""
}

// SlotDay is the fetched slot list for one date, tagged with the params it
// was issued for. Slots is the stored list; presentation filtering happens
// separately in VisibleSlots.
type SlotDay struct {
	Params      SlotParams
	Slots       []upstream.TimeSlot
	Holiday     bool
	HolidayName string
	Warning     string
}

// SlotsAPI is the slice of the upstream client the loader needs.
type SlotsAPI interface {
	GetFreeSlots(ctx context.Context, shopID, barberID, serviceID, date string) (*upstream.FreeSlotsResponse, error)
}

// Loader fetches the slot list for a concretely selected date.
type Loader struct {
	api    SlotsAPI
	logger *logging.Logger
}

// NewLoader creates a daily slot loader.
func NewLoader(api SlotsAPI, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{api: api, logger: logger}
}

// Load fetches the day's slots, replacing any previous list wholesale. Like
// the resolver it never returns an error: failures yield an empty day with
// a warning.
func (l *Loader) Load(ctx context.Context, params SlotParams) SlotDay {
	if !params.Complete() {
		return SlotDay{Params: params}
	}

	resp, err := l.api.GetFreeSlots(ctx, params.ShopID, params.BarberID, params.ServiceID, params.Date)
	if err != nil {
		l.logger.Warn("free slots fetch failed",
			"shop", params.ShopID, "barber", params.BarberID,
			"date", params.Date, "error", err)
		return SlotDay{Params: params, Warning: WarnSlotsUnavailable}
	}

	if resp.IsHoliday {
		return SlotDay{Params: params, Holiday: true, HolidayName: resp.HolidayName}
	}
	return SlotDay{Params: params, Slots: resp.Slots}
}

// VisibleSlots applies the past-time filter: when date is today, slots whose
// HH:MM is not strictly after now's wall-clock time are dropped from the
// presented list. The stored list is untouched; the filter is re-derived at
// render time. Non-today dates pass through unfiltered.
func VisibleSlots(slots []upstream.TimeSlot, date string, now time.Time) []upstream.TimeSlot {
	if date != now.Format(ISODate) {
		return slots
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	visible := make([]upstream.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		m, ok := slotMinutes(slot.Time)
		if !ok {
			continue
		}
		if m > nowMinutes {
			visible = append(visible, slot)
		}
	}
	return visible
}

func slotMinutes(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

var _ SlotsAPI = (*upstream.Client)(nil)
