package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// Handler exposes the wizard over HTTP. Every mutation returns the
// refreshed view so the UI never has to guess what changed.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a wizard HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// HandleStart handles POST /wizard/sessions.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	view, err := h.service.Start(r.Context(), req.Slug)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleView handles GET /wizard/sessions/{sessionID}.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSelectService handles POST /wizard/sessions/{sessionID}/service.
func (h *Handler) HandleSelectService(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, "service_id", h.service.SelectService)
}

// HandleSelectBarber handles POST /wizard/sessions/{sessionID}/barber.
func (h *Handler) HandleSelectBarber(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, "barber_id", h.service.SelectBarber)
}

// HandleNavigateMonth handles POST /wizard/sessions/{sessionID}/month.
func (h *Handler) HandleNavigateMonth(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, "direction", h.service.NavigateMonth)
}

// HandleSelectDate handles POST /wizard/sessions/{sessionID}/date.
func (h *Handler) HandleSelectDate(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, "date", h.service.SelectDate)
}

// HandleSelectTime handles POST /wizard/sessions/{sessionID}/time.
func (h *Handler) HandleSelectTime(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, "time", h.service.SelectTime)
}

// HandleSubmit handles POST /wizard/sessions/{sessionID}/booking.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var form BookingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.service.Submit(r.Context(), chi.URLParam(r, "sessionID"), form)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// selection decodes a single-field body and applies the matching operation.
func (h *Handler) selection(w http.ResponseWriter, r *http.Request, field string, op func(ctx context.Context, id, value string) (*View, error)) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	value, ok := body[field]
	if !ok {
		writeError(w, http.StatusBadRequest, field+" is required")
		return
	}

	view, err := op(r.Context(), chi.URLParam(r, "sessionID"), value)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *upstream.APIError
	var invalid validator.ValidationErrors
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, ErrDateUnavailable), errors.Is(err, ErrSlotUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrIncompleteSelection):
		writeError(w, http.StatusUnprocessableEntity, "please complete every step before booking")
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fieldErrors(invalid),
		})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		// Upstream rejection messages go to the visitor verbatim.
		writeError(w, status, apiErr.Message)
	default:
		h.logger.Error("wizard request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func fieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
