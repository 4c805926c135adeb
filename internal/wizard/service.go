package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/barberflow/booking-storefront/internal/availability"
	"github.com/barberflow/booking-storefront/internal/holiday"
	"github.com/barberflow/booking-storefront/internal/observability/metrics"
	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

var (
	// ErrDateUnavailable is returned when the visitor picks a day that is
	// past, unavailable, or a holiday.
	ErrDateUnavailable = errors.New("wizard: date not selectable")

	// ErrSlotUnavailable is returned when the picked time is not in the
	// day's visible slot list or is already booked.
	ErrSlotUnavailable = errors.New("wizard: time not available")

	// ErrIncompleteSelection is returned when a booking is submitted before
	// every wizard step is done.
	ErrIncompleteSelection = errors.New("wizard: selection incomplete")
)

// commitRetries bounds how many times a refresh is redone when the session
// changed under it while fetches were in flight.
const commitRetries = 3

// ShopAPI is the slice of the upstream client the wizard drives directly.
// Monthly availability and slot fetches go through the resolver and loader.
type ShopAPI interface {
	GetShopBySlug(ctx context.Context, slug string) (*upstream.Barbershop, error)
	CreateBooking(ctx context.Context, shopID string, req upstream.CreateBookingRequest) (*upstream.BookingConfirmation, error)
}

// Config wires a wizard service.
type Config struct {
	Store       *Store
	Shops       ShopAPI
	Resolver    *availability.Resolver
	Loader      *availability.Loader
	Holidays    holiday.Calendar
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
	HorizonDays int
	Now         func() time.Time // test hook, defaults to time.Now
}

// Service runs the wizard flow. All mutations go through it: each operation
// updates the session first, then re-derives availability from the new
// parameters.
type Service struct {
	store       *Store
	shops       ShopAPI
	resolver    *availability.Resolver
	loader      *availability.Loader
	holidays    holiday.Calendar
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	horizonDays int
	validate    *validator.Validate
	now         func() time.Time
}

// NewService creates a wizard service.
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Holidays == nil {
		cfg.Holidays = holiday.None
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 90
	}
	return &Service{
		store:       cfg.Store,
		shops:       cfg.Shops,
		resolver:    cfg.Resolver,
		loader:      cfg.Loader,
		holidays:    cfg.Holidays,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		horizonDays: cfg.HorizonDays,
		validate:    validator.New(),
		now:         cfg.Now,
	}
}

// Start creates a session for the shop identified by slug and returns the
// initial view, with the first available date already searched for once
// service and barber are picked (which at start they are not, so the
// calendar renders with every future day selectable).
func (s *Service) Start(ctx context.Context, slug string) (*View, error) {
	shop, err := s.shops.GetShopBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	sess := NewSession(slug, shop.ID, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.render(ctx, sess, shop)
}

// View re-derives and returns the current view for a session.
func (s *Service) View(ctx context.Context, id string) (*View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, sess)
}

// SelectService records the service choice. The selected date and time are
// kept; a service change can alter availability, so the next refresh
// re-verifies them against the new tuple.
func (s *Service) SelectService(ctx context.Context, id, serviceID string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		if sess.ServiceID != serviceID {
			sess.ServiceID = serviceID
			sess.ClearSelection()
		}
		return nil
	})
}

// SelectBarber records the barber choice and clears any picked date and
// time, since availability is per barber.
func (s *Service) SelectBarber(ctx context.Context, id, barberID string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		if sess.BarberID != barberID {
			sess.BarberID = barberID
			sess.ClearSelection()
		}
		return nil
	})
}

// NavigateMonth moves the displayed calendar month. direction is "prev" or
// "next". Moving before the current real month is a silent no-op: the view
// is returned unchanged.
func (s *Service) NavigateMonth(ctx context.Context, id, direction string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		displayed := sess.DisplayedMonth()
		current := availability.MonthOf(s.now())
		switch direction {
		case "prev":
			if !displayed.After(current) {
				return nil
			}
			sess.SetMonth(displayed.Prev())
		case "next":
			sess.SetMonth(displayed.Next())
		default:
			return fmt.Errorf("wizard: unknown direction %q", direction)
		}
		sess.ClearSelection()
		return nil
	})
}

// SelectDate records an explicit date pick. The date must be selectable on
// the displayed month under the current tuple.
func (s *Service) SelectDate(ctx context.Context, id, date string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		m := sess.DisplayedMonth()
		if !m.Contains(date) {
			return ErrDateUnavailable
		}
		result := s.resolveMonthly(ctx, sess, m)
		today := s.today()
		if !availability.IsSelectable(date, today, result.Unavailable, s.holidays) {
			if s.holidays.IsHoliday(date) {
				return fmt.Errorf("%w: closed for %s", ErrDateUnavailable, s.holidays.HolidayName(date))
			}
			return ErrDateUnavailable
		}
		if sess.Date != date {
			sess.Date = date
			sess.Time = ""
		}
		return nil
	})
}

// SelectTime records a time pick. The time must be one of the day's visible
// slots and not already booked.
func (s *Service) SelectTime(ctx context.Context, id, timeStr string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		if sess.Date == "" {
			return ErrSlotUnavailable
		}
		day := s.loader.Load(ctx, SlotParamsFor(sess))
		for _, slot := range availability.VisibleSlots(day.Slots, sess.Date, s.now()) {
			if slot.Time == timeStr {
				if slot.IsBooked {
					return ErrSlotUnavailable
				}
				sess.Time = timeStr
				return nil
			}
		}
		return ErrSlotUnavailable
	})
}

// BookingForm is the contact form of the final wizard step.
type BookingForm struct {
	Name  string `json:"name" validate:"required,min=2,max=120"`
	Phone string `json:"phone" validate:"required,min=10,max=20"`
	Email string `json:"email" validate:"omitempty,email"`
}

// BookingOutcome is the result of a successful submission.
type BookingOutcome struct {
	BookingID  string `json:"booking_id"`
	Status     string `json:"status,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
}

// Submit validates the form and creates the booking upstream. The session's
// selection is cleared on success so a follow-up booking starts fresh.
// Upstream rejections come back as *upstream.APIError with the upstream
// message intact.
func (s *Service) Submit(ctx context.Context, id string, form BookingForm) (*BookingOutcome, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.ServiceID == "" || sess.BarberID == "" || sess.Date == "" || sess.Time == "" {
		return nil, ErrIncompleteSelection
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, err
	}

	startsAt, err := time.ParseInLocation("2006-01-02 15:04", sess.Date+" "+sess.Time, time.Local)
	if err != nil {
		return nil, fmt.Errorf("wizard: bad selection %q %q: %w", sess.Date, sess.Time, err)
	}

	req := upstream.CreateBookingRequest{
		Barbershop: sess.ShopID,
		Barber:     sess.BarberID,
		Service:    sess.ServiceID,
		Time:       startsAt.Format(time.RFC3339),
		Customer: upstream.BookingCustomer{
			Name:  strings.TrimSpace(form.Name),
			Phone: digitsOnly(form.Phone),
			Email: strings.TrimSpace(form.Email),
		},
	}

	conf, err := s.shops.CreateBooking(ctx, sess.ShopID, req)
	if err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}
	s.metrics.ObserveBooking("ok")

	sess.ServiceID = ""
	sess.BarberID = ""
	sess.ClearSelection()
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Warn("session reset after booking failed", "session", sess.ID, "error", err)
	}

	return &BookingOutcome{
		BookingID:  conf.ID,
		Status:     conf.Status,
		PaymentURL: conf.PaymentURL,
	}, nil
}

// mutate applies fn to the session, persists it, then refreshes the view.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) (*View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.refresh(ctx, sess)
}

// refresh runs the availability pipeline for the session's current
// parameters: resolve the displayed month, auto-pick the first available
// date when none is picked, then load the day's slots. Results are only
// committed when the stored session still matches the parameters they were
// derived under; otherwise the whole derivation is redone on the fresh
// state.
func (s *Service) refresh(ctx context.Context, sess *Session) (*View, error) {
	shop, err := s.shops.GetShopBySlug(ctx, sess.ShopSlug)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	for attempt := 0; attempt < commitRetries; attempt++ {
		issued := sess.paramsKey()
		derived := *sess
		view, err := s.derive(ctx, &derived, shop)
		if err != nil {
			return nil, err
		}

		stored, err := s.store.Get(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		if stored.paramsKey() != issued {
			// The session moved while fetches were in flight. Discard the
			// derived state and start over from what is now stored.
			sess = stored
			continue
		}

		if derived.paramsKey() != issued || derived.Time != stored.Time || derived.SearchExhausted != stored.SearchExhausted {
			stored.SetMonth(derived.DisplayedMonth())
			stored.Date = derived.Date
			stored.Time = derived.Time
			stored.SearchExhausted = derived.SearchExhausted
			if err := s.store.Save(ctx, stored); err != nil {
				return nil, err
			}
		}
		return view, nil
	}
	return nil, fmt.Errorf("wizard: session %s kept changing during refresh", sess.ID)
}

// render builds a view without the commit loop, for freshly created
// sessions that nothing else can be racing yet.
func (s *Service) render(ctx context.Context, sess *Session, shop *upstream.Barbershop) (*View, error) {
	return s.derive(ctx, sess, shop)
}

// derive is one pass of the pipeline. It may mutate sess (auto-picked date,
// advanced month, exhaustion latch); the caller decides whether that state
// is committed.
func (s *Service) derive(ctx context.Context, sess *Session, shop *upstream.Barbershop) (*View, error) {
	var warnings []string
	today := s.today()
	now := s.now()

	m := sess.DisplayedMonth()
	monthly := s.resolveMonthly(ctx, sess, m)
	if monthly.Warning != "" {
		warnings = append(warnings, monthly.Warning)
	}

	// First-available search. Runs only when the tuple is complete, nothing
	// is picked yet, and a previous search has not already exhausted the
	// horizon. Each step resolves one month and either picks a date or
	// advances to the next month, bounded by the search horizon.
	if sess.Date == "" && sess.ServiceID != "" && sess.BarberID != "" && !sess.SearchExhausted {
		searchStart := today
		if first := m.Date(1); first > searchStart {
			searchStart = first
		}
		for {
			if date, ok := availability.FirstSelectable(today, m, monthly.Unavailable, s.holidays); ok {
				sess.Date = date
				sess.Time = ""
				s.metrics.ObserveSearchDays(daysBetween(searchStart, date))
				break
			}
			next := m.Next()
			if availability.HorizonExceeded(searchStart, next, s.horizonDays) {
				sess.SearchExhausted = true
				warnings = append(warnings, fmt.Sprintf("No availability found in the next %d days. Please try another barber or service.", s.horizonDays))
				break
			}
			m = next
			sess.SetMonth(m)
			monthly = s.resolveMonthly(ctx, sess, m)
			if monthly.Warning != "" {
				warnings = append(warnings, monthly.Warning)
			}
		}
	}

	view := &View{
		SessionID:       sess.ID,
		Shop:            shopSummary(shop),
		ServiceID:       sess.ServiceID,
		BarberID:        sess.BarberID,
		Calendar:        buildCalendar(m, today, sess.Date, monthly.Unavailable, s.holidays, now),
		SelectedDate:    sess.Date,
		SelectedTime:    sess.Time,
		Slots:           []SlotView{},
		SearchExhausted: sess.SearchExhausted,
	}

	if sess.Date != "" {
		day := s.loader.Load(ctx, SlotParamsFor(sess))
		if day.Warning != "" {
			warnings = append(warnings, day.Warning)
			s.metrics.ObserveSlotLoad("error")
		} else {
			s.metrics.ObserveSlotLoad("ok")
		}
		if day.Holiday {
			name := day.HolidayName
			if name == "" {
				name = "a holiday"
			}
			view.HolidayMessage = fmt.Sprintf("The shop is closed on this date (%s).", name)
		}
		view.Slots = slotViews(availability.VisibleSlots(day.Slots, sess.Date, now))

		// A picked time must survive re-derivation: if the slot list no
		// longer offers it, the pick is dropped rather than shown stale.
		if sess.Time != "" && !slotListed(view.Slots, sess.Time) {
			sess.Time = ""
			view.SelectedTime = ""
		}
	}

	view.Warnings = warnings
	return view, nil
}

func (s *Service) resolveMonthly(ctx context.Context, sess *Session, m availability.Month) availability.MonthlyResult {
	params := availability.MonthParams{
		ShopID:    sess.ShopID,
		BarberID:  sess.BarberID,
		ServiceID: sess.ServiceID,
		Month:     m,
	}
	result := s.resolver.Resolve(ctx, params)
	switch {
	case !params.Complete():
		s.metrics.ObserveMonthlyResolve("skipped")
	case result.Warning != "":
		s.metrics.ObserveMonthlyResolve("error")
	default:
		s.metrics.ObserveMonthlyResolve("ok")
	}
	return result
}

// SlotParamsFor builds the slot-fetch tuple for the session's selection.
func SlotParamsFor(sess *Session) availability.SlotParams {
	return availability.SlotParams{
		ShopID:    sess.ShopID,
		BarberID:  sess.BarberID,
		ServiceID: sess.ServiceID,
		Date:      sess.Date,
	}
}

func (s *Service) today() string {
	return s.now().Format(availability.ISODate)
}

func slotListed(slots []SlotView, t string) bool {
	for _, s := range slots {
		if s.Time == t && !s.Booked {
			return true
		}
	}
	return false
}

func daysBetween(from, to string) int {
	a, errA := time.Parse(availability.ISODate, from)
	b, errB := time.Parse(availability.ISODate, to)
	if errA != nil || errB != nil || b.Before(a) {
		return 0
	}
	return int(b.Sub(a) / (24 * time.Hour))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
