// Package router assembles the HTTP surface of the storefront API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/barberflow/booking-storefront/internal/customer"
	httpmiddleware "github.com/barberflow/booking-storefront/internal/http/middleware"
	"github.com/barberflow/booking-storefront/internal/storefront"
	"github.com/barberflow/booking-storefront/internal/wizard"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger     *logging.Logger
	Wizard     *wizard.Handler
	Customer   *customer.Handler
	Storefront *storefront.Handler
	Tokens     *customer.TokenManager

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// OTPRatePerMinute throttles OTP requests per IP. Zero disables the
	// limiter (tests, local dev).
	OTPRatePerMinute int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		// Public shop pages.
		api.Route("/shops/{slug}", func(r chi.Router) {
			r.Get("/", cfg.Storefront.HandleShop)
			r.Get("/services", cfg.Storefront.HandleServices)
			r.Get("/barbers", cfg.Storefront.HandleBarbers)
			r.Get("/plans", cfg.Storefront.HandlePlans)
			r.Get("/reviews", cfg.Storefront.HandleReviews)
			r.Get("/products", cfg.Storefront.HandleProducts)
		})

		// Booking wizard.
		api.Post("/wizard/sessions", cfg.Wizard.HandleStart)
		api.Route("/wizard/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", cfg.Wizard.HandleView)
			r.Post("/service", cfg.Wizard.HandleSelectService)
			r.Post("/barber", cfg.Wizard.HandleSelectBarber)
			r.Post("/month", cfg.Wizard.HandleNavigateMonth)
			r.Post("/date", cfg.Wizard.HandleSelectDate)
			r.Post("/time", cfg.Wizard.HandleSelectTime)
			r.Post("/booking", cfg.Wizard.HandleSubmit)
		})

		// Customer auth. OTP requests are throttled per IP since each one
		// sends a WhatsApp message upstream.
		api.Group(func(auth chi.Router) {
			if cfg.OTPRatePerMinute > 0 {
				auth.Use(httpmiddleware.RateLimit(float64(cfg.OTPRatePerMinute)/60, cfg.OTPRatePerMinute))
			}
			auth.Post("/auth/otp", cfg.Customer.HandleRequestOTP)
			auth.Post("/auth/otp/verify", cfg.Customer.HandleVerifyOTP)
		})

		// My-bookings area, behind the customer session token.
		api.Route("/me/bookings", func(r chi.Router) {
			r.Use(customer.RequireAuth(cfg.Tokens))
			r.Get("/", cfg.Customer.HandleListBookings)
			r.Put("/{bookingID}/cancel", cfg.Customer.HandleCancelBooking)
			r.Patch("/{bookingID}", cfg.Customer.HandleRescheduleBooking)
			r.Post("/{bookingID}/payment", cfg.Customer.HandleCreatePayment)
		})
	})

	return r
}
