package wizard

import (
	"time"

	"github.com/barberflow/booking-storefront/internal/availability"
	"github.com/barberflow/booking-storefront/internal/holiday"
	"github.com/barberflow/booking-storefront/internal/upstream"
)

// View is the wizard state rendered for one session, everything the
// storefront needs to draw the step the visitor is on.
type View struct {
	SessionID string      `json:"session_id"`
	Shop      ShopSummary `json:"shop"`

	ServiceID string `json:"service_id"`
	BarberID  string `json:"barber_id"`

	Calendar CalendarView `json:"calendar"`

	SelectedDate string     `json:"selected_date"`
	SelectedTime string     `json:"selected_time"`
	Slots        []SlotView `json:"slots"`

	HolidayMessage  string   `json:"holiday_message,omitempty"`
	SearchExhausted bool     `json:"search_exhausted"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ShopSummary is the shop identity carried on every view.
type ShopSummary struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Logo  string `json:"logo,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// CalendarView is one month of the calendar grid.
type CalendarView struct {
	Year  int    `json:"year"`
	Month int    `json:"month"` // 1-12
	Label string `json:"label"` // e.g. "June 2026"

	// FirstWeekday is the weekday of day 1, Sunday=0, for grid alignment.
	FirstWeekday int `json:"first_weekday"`

	Days        []DayView `json:"days"`
	PrevEnabled bool      `json:"prev_enabled"`
}

// DayView is one cell of the calendar grid.
type DayView struct {
	Date        string `json:"date"`
	Day         int    `json:"day"`
	Past        bool   `json:"past"`
	Unavailable bool   `json:"unavailable"`
	Holiday     bool   `json:"holiday"`
	HolidayName string `json:"holiday_name,omitempty"`
	Selectable  bool   `json:"selectable"`
	Selected    bool   `json:"selected"`
}

// SlotView is one bookable time in the selected day's list. Booked slots
// stay visible so the visitor sees a full schedule.
type SlotView struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}

func shopSummary(shop *upstream.Barbershop) ShopSummary {
	return ShopSummary{
		ID:    shop.ID,
		Slug:  shop.Slug,
		Name:  shop.Name,
		Logo:  shop.LogoURL,
		Theme: shop.ThemeColor,
	}
}

func buildCalendar(m availability.Month, today, selected string, unavailable availability.DaySet, cal holiday.Calendar, now time.Time) CalendarView {
	view := CalendarView{
		Year:         m.Year,
		Month:        int(m.Month),
		Label:        m.First().Format("January 2006"),
		FirstWeekday: int(m.FirstWeekday()),
		PrevEnabled:  m.After(availability.MonthOf(now)),
		Days:         make([]DayView, 0, m.Days()),
	}
	for day := 1; day <= m.Days(); day++ {
		date := m.Date(day)
		dv := DayView{
			Date:        date,
			Day:         day,
			Past:        date < today,
			Unavailable: unavailable.Has(date),
			Holiday:     cal.IsHoliday(date),
			Selected:    date == selected,
		}
		if dv.Holiday {
			dv.HolidayName = cal.HolidayName(date)
		}
		dv.Selectable = availability.IsSelectable(date, today, unavailable, cal)
		view.Days = append(view.Days, dv)
	}
	return view
}

func slotViews(slots []upstream.TimeSlot) []SlotView {
	out := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotView{Time: s.Time, Booked: s.IsBooked})
	}
	return out
}
