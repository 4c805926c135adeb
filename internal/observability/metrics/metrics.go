package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking wizard and
// availability core.
type BookingMetrics struct {
	monthlyResolves *prometheus.CounterVec
	slotLoads       *prometheus.CounterVec
	bookings        *prometheus.CounterVec
	searchDays      prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		monthlyResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "availability",
			Name:      "monthly_resolves_total",
			Help:      "Monthly availability resolutions by outcome",
		}, []string{"outcome"}),
		slotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "availability",
			Name:      "slot_loads_total",
			Help:      "Daily slot loads by outcome",
		}, []string{"outcome"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "wizard",
			Name:      "bookings_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		searchDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "availability",
			Name:      "first_available_search_days",
			Help:      "Days scanned before the first-available search settled",
			Buckets:   []float64{0, 1, 2, 3, 7, 14, 30, 60, 90},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.monthlyResolves, m.slotLoads, m.bookings, m.searchDays)
	return m
}

func (m *BookingMetrics) ObserveMonthlyResolve(outcome string) {
	if m == nil {
		return
	}
	m.monthlyResolves.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSlotLoad(outcome string) {
	if m == nil {
		return
	}
	m.slotLoads.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSearchDays(days int) {
	if m == nil {
		return
	}
	m.searchDays.Observe(float64(days))
}
