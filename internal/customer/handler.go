package customer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// historyPageSize is how many past bookings one history page holds.
const historyPageSize = 5

// API is the slice of the upstream client the customer area needs.
type API interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (*upstream.VerifyOTPResponse, error)
	ListCustomerBookings(ctx context.Context, token string) ([]upstream.PopulatedBooking, error)
	CancelBooking(ctx context.Context, token, shopID, bookingID string) error
	RescheduleBooking(ctx context.Context, token, shopID, bookingID, newTime string) error
	CreatePayment(ctx context.Context, token, shopID, bookingID string) (*upstream.PaymentLink, error)
}

// Handler exposes customer auth and the my-bookings area.
type Handler struct {
	api      API
	tokens   *TokenManager
	validate *validator.Validate
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a customer handler.
func NewHandler(api API, tokens *TokenManager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		api:      api,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// HandleRequestOTP handles POST /auth/otp. The upstream sends the code over
// WhatsApp; this endpoint only relays the phone number.
func (h *Handler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone" validate:"required,min=10,max=20"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "a valid phone number is required")
		return
	}

	if err := h.api.RequestOTP(r.Context(), req.Phone); err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// HandleVerifyOTP handles POST /auth/otp/verify. On success the upstream
// bearer token is wrapped into a signed session token for the browser.
func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone" validate:"required,min=10,max=20"`
		Code  string `json:"code" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "phone and 6-digit code are required")
		return
	}

	verified, err := h.api.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}

	session, err := h.tokens.Issue(verified.Customer.ID, verified.Customer.Name, verified.Customer.Phone, verified.Token)
	if err != nil {
		h.logger.Error("issue session token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": session,
		"customer": map[string]string{
			"id":    verified.Customer.ID,
			"name":  verified.Customer.Name,
			"phone": verified.Customer.Phone,
		},
	})
}

// BookingView is one booking rendered for the my-bookings page.
type BookingView struct {
	ID              string  `json:"id"`
	ShopID          string  `json:"shop_id"`
	ShopName        string  `json:"shop_name"`
	ShopSlug        string  `json:"shop_slug"`
	ShopLogo        string  `json:"shop_logo,omitempty"`
	PaymentsEnabled bool    `json:"payments_enabled"`
	BarberName      string  `json:"barber_name"`
	ServiceName     string  `json:"service_name"`
	ServicePrice    float64 `json:"service_price"`
	Time            string  `json:"time"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"payment_status,omitempty"`
}

// BookingsResponse splits a customer's bookings into upcoming and a
// paginated history of past ones.
type BookingsResponse struct {
	Upcoming []BookingView `json:"upcoming"`
	Past     []BookingView `json:"past"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total_past"`
}

// HandleListBookings handles GET /me/bookings?page=N.
func (h *Handler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	bookings, err := h.api.ListCustomerBookings(r.Context(), claims.UpstreamToken)
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	writeJSON(w, http.StatusOK, splitBookings(bookings, h.now(), page))
}

// splitBookings sorts upcoming bookings soonest-first and past bookings
// most-recent-first, then pages the past list. Bookings with a time that
// does not parse land in the past list rather than vanishing.
func splitBookings(bookings []upstream.PopulatedBooking, now time.Time, page int) BookingsResponse {
	var upcoming, past []upstream.PopulatedBooking
	for _, b := range bookings {
		at, err := time.Parse(time.RFC3339, b.Time)
		if err == nil && !at.Before(now) {
			upcoming = append(upcoming, b)
		} else {
			past = append(past, b)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Time < upcoming[j].Time })
	sort.SliceStable(past, func(i, j int) bool { return past[i].Time > past[j].Time })

	total := len(past)
	start := (page - 1) * historyPageSize
	if start > total {
		start = total
	}
	end := start + historyPageSize
	if end > total {
		end = total
	}

	resp := BookingsResponse{
		Upcoming: make([]BookingView, 0, len(upcoming)),
		Past:     make([]BookingView, 0, end-start),
		Page:     page,
		PageSize: historyPageSize,
		Total:    total,
	}
	for _, b := range upcoming {
		resp.Upcoming = append(resp.Upcoming, bookingView(b))
	}
	for _, b := range past[start:end] {
		resp.Past = append(resp.Past, bookingView(b))
	}
	return resp
}

func bookingView(b upstream.PopulatedBooking) BookingView {
	return BookingView{
		ID:              b.ID,
		ShopID:          b.Barbershop.ID,
		ShopName:        b.Barbershop.Name,
		ShopSlug:        b.Barbershop.Slug,
		ShopLogo:        b.Barbershop.LogoURL,
		PaymentsEnabled: b.Barbershop.PaymentsEnabled,
		BarberName:      b.Barber.Name,
		ServiceName:     b.Service.Name,
		ServicePrice:    b.Service.Price,
		Time:            b.Time,
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
	}
}

// HandleCancelBooking handles PUT /me/bookings/{bookingID}/cancel.
func (h *Handler) HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	claims, shopID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}
	if err := h.api.CancelBooking(r.Context(), claims.UpstreamToken, shopID, bookingID); err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// HandleRescheduleBooking handles PATCH /me/bookings/{bookingID}. The new
// date and time come in separately and are combined to one timestamp.
func (h *Handler) HandleRescheduleBooking(w http.ResponseWriter, r *http.Request) {
	claims, shopID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}

	var req struct {
		Date string `json:"date" validate:"required,datetime=2006-01-02"`
		Time string `json:"time" validate:"required,datetime=15:04"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date and time are required")
		return
	}

	at, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, time.Local)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date or time")
		return
	}

	if err := h.api.RescheduleBooking(r.Context(), claims.UpstreamToken, shopID, bookingID, at.Format(time.RFC3339)); err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}

// HandleCreatePayment handles POST /me/bookings/{bookingID}/payment. The
// upstream returns a checkout URL for the booking's deposit.
func (h *Handler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	claims, shopID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}
	link, err := h.api.CreatePayment(r.Context(), claims.UpstreamToken, shopID, bookingID)
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// bookingParams pulls the auth claims, shop id, and booking id every
// booking action needs. Shop id rides on a query param because booking ids
// are only unique per shop upstream.
func (h *Handler) bookingParams(w http.ResponseWriter, r *http.Request) (*Claims, string, string, bool) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, "", "", false
	}
	bookingID := chi.URLParam(r, "bookingID")
	shopID := r.URL.Query().Get("shop_id")
	if bookingID == "" || shopID == "" {
		writeError(w, http.StatusBadRequest, "shop_id and booking id are required")
		return nil, "", "", false
	}
	return claims, shopID, bookingID, true
}

func (h *Handler) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, apiErr.Message)
		return
	}
	h.logger.Error("customer request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadGateway, "upstream unavailable")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
