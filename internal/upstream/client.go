// Package upstream wraps the barbershop-management HTTP API consumed by the
// storefront. Every screen of the storefront is a thin view over these calls.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/barberflow/booking-storefront/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx upstream reply. The message is the upstream's own
// error payload so handlers can surface it verbatim (booking conflicts and
// plan-credit 403s carry user-facing text).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// Client is a REST client for the barbershop-management API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient constructs an upstream API client.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// GetShopBySlug resolves a shop's public profile from its URL slug.
func (c *Client) GetShopBySlug(ctx context.Context, slug string) (*Barbershop, error) {
	path := fmt.Sprintf("/barbershops/slug/%s", url.PathEscape(slug))
	var shop Barbershop
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &shop); err != nil {
		return nil, fmt.Errorf("get shop by slug: %w", err)
	}
	return &shop, nil
}

// GetServices lists the shop's bookable services.
func (c *Client) GetServices(ctx context.Context, shopID string) ([]Service, error) {
	path := fmt.Sprintf("/barbershops/%s/services", url.PathEscape(shopID))
	var services []Service
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &services); err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	return services, nil
}

// GetBarbers lists the shop's staff.
func (c *Client) GetBarbers(ctx context.Context, shopID string) ([]Barber, error) {
	path := fmt.Sprintf("/barbershops/%s/barbers", url.PathEscape(shopID))
	var barbers []Barber
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &barbers); err != nil {
		return nil, fmt.Errorf("get barbers: %w", err)
	}
	return barbers, nil
}

// GetPlans lists the shop's subscription plans.
func (c *Client) GetPlans(ctx context.Context, shopID string) ([]Plan, error) {
	path := fmt.Sprintf("/barbershops/%s/plans", url.PathEscape(shopID))
	var plans []Plan
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &plans); err != nil {
		return nil, fmt.Errorf("get plans: %w", err)
	}
	return plans, nil
}

// GetReviews lists the shop's customer reviews.
func (c *Client) GetReviews(ctx context.Context, shopID string) ([]Review, error) {
	path := fmt.Sprintf("/barbershops/%s/reviews", url.PathEscape(shopID))
	var reviews []Review
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &reviews); err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	return reviews, nil
}

// GetStoreProducts returns one page of the shop's retail catalog.
func (c *Client) GetStoreProducts(ctx context.Context, shopID string, page int) (*ProductPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	path := fmt.Sprintf("/barbershops/%s/products/store", url.PathEscape(shopID))
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var out ProductPage
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, fmt.Errorf("get store products: %w", err)
	}
	return &out, nil
}

// GetFreeSlots returns the barber's slot list for one date. The date is an
// ISO YYYY-MM-DD string; serviceId narrows slot duration server-side.
func (c *Client) GetFreeSlots(ctx context.Context, shopID, barberID, serviceID, date string) (*FreeSlotsResponse, error) {
	q := url.Values{}
	q.Set("date", date)
	if serviceID != "" {
		q.Set("serviceId", serviceID)
	}
	path := fmt.Sprintf("/barbershops/%s/barbers/%s/free-slots?%s",
		url.PathEscape(shopID), url.PathEscape(barberID), q.Encode())

	var out FreeSlotsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, fmt.Errorf("get free slots: %w", err)
	}
	return &out, nil
}

// GetMonthlyAvailability returns the ISO dates within (year, month) that have
// zero bookable slots for the barber/service pair. Month is 1-12.
func (c *Client) GetMonthlyAvailability(ctx context.Context, shopID, barberID, serviceID string, year, month int) ([]string, error) {
	q := url.Values{}
	q.Set("year", fmt.Sprintf("%d", year))
	q.Set("month", fmt.Sprintf("%d", month))
	if serviceID != "" {
		q.Set("serviceId", serviceID)
	}
	path := fmt.Sprintf("/barbershops/%s/bookings/%s/monthly-availability?%s",
		url.PathEscape(shopID), url.PathEscape(barberID), q.Encode())

	var out struct {
		UnavailableDays []string `json:"unavailableDays"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, fmt.Errorf("get monthly availability: %w", err)
	}
	return out.UnavailableDays, nil
}

// GetHolidays lists holidays for a calendar year. The storefront ships with
// this lookup disabled; the endpoint is kept for the pluggable calendar.
func (c *Client) GetHolidays(ctx context.Context, year int) ([]Holiday, error) {
	path := fmt.Sprintf("/holidays/holidays/%d", year)
	var out struct {
		Holidays []Holiday `json:"holidays"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, fmt.Errorf("get holidays: %w", err)
	}
	return out.Holidays, nil
}

// CreateBooking submits a booking for the shop.
func (c *Client) CreateBooking(ctx context.Context, shopID string, req CreateBookingRequest) (*BookingConfirmation, error) {
	path := fmt.Sprintf("/barbershops/%s/bookings", url.PathEscape(shopID))
	var out BookingConfirmation
	if err := c.doJSON(ctx, http.MethodPost, path, "", req, &out); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &out, nil
}

// RequestOTP asks the upstream to send a login code to the phone number.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/customer/request-otp", "", body, nil); err != nil {
		return fmt.Errorf("request otp: %w", err)
	}
	return nil
}

// VerifyOTP exchanges phone+code for an upstream bearer token.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*VerifyOTPResponse, error) {
	body := map[string]string{"phone": phone, "otp": otp}
	var out VerifyOTPResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/customer/verify-otp", "", body, &out); err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return &out, nil
}

// ListCustomerBookings returns the authenticated customer's bookings.
func (c *Client) ListCustomerBookings(ctx context.Context, token string) ([]PopulatedBooking, error) {
	var out []PopulatedBooking
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/customer/me/bookings", token, nil, &out); err != nil {
		return nil, fmt.Errorf("list customer bookings: %w", err)
	}
	return out, nil
}

// CancelBooking cancels one of the customer's bookings.
func (c *Client) CancelBooking(ctx context.Context, token, shopID, bookingID string) error {
	path := fmt.Sprintf("/barbershops/%s/bookings/%s/cancel",
		url.PathEscape(shopID), url.PathEscape(bookingID))
	if err := c.doJSON(ctx, http.MethodPut, path, token, nil, nil); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}

// RescheduleBooking moves a booking to a new RFC3339 time.
func (c *Client) RescheduleBooking(ctx context.Context, token, shopID, bookingID, newTime string) error {
	path := fmt.Sprintf("/barbershops/%s/bookings/%s/reschedule",
		url.PathEscape(shopID), url.PathEscape(bookingID))
	body := map[string]string{"time": newTime}
	if err := c.doJSON(ctx, http.MethodPatch, path, token, body, nil); err != nil {
		return fmt.Errorf("reschedule booking: %w", err)
	}
	return nil
}

// CreatePayment creates a payment link for an unpaid booking.
func (c *Client) CreatePayment(ctx context.Context, token, shopID, bookingID string) (*PaymentLink, error) {
	path := fmt.Sprintf("/api/barbershops/%s/bookings/%s/create-payment",
		url.PathEscape(shopID), url.PathEscape(bookingID))
	var out PaymentLink
	if err := c.doJSON(ctx, http.MethodPost, path, token, nil, &out); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, bearer string, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractErrorMessage(respBody)
		c.logger.Warn("upstream API non-2xx response",
			"status", resp.StatusCode, "method", method, "path", path)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractErrorMessage pulls the {"error": ...} payload out of an upstream
// failure, falling back to the raw body truncated for logs.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
