// Package storefront serves the public shop pages: profile, service and
// barber listings, subscription plans, reviews, and the product store.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// API is the slice of the upstream client the public pages need.
type API interface {
	GetShopBySlug(ctx context.Context, slug string) (*upstream.Barbershop, error)
	GetServices(ctx context.Context, shopID string) ([]upstream.Service, error)
	GetBarbers(ctx context.Context, shopID string) ([]upstream.Barber, error)
	GetPlans(ctx context.Context, shopID string) ([]upstream.Plan, error)
	GetReviews(ctx context.Context, shopID string) ([]upstream.Review, error)
	GetStoreProducts(ctx context.Context, shopID string, page int) (*upstream.ProductPage, error)
}

// Handler exposes the public shop pages.
type Handler struct {
	api    API
	logger *logging.Logger
}

// NewHandler creates a storefront handler.
func NewHandler(api API, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{api: api, logger: logger}
}

// HandleShop handles GET /shops/{slug}.
func (h *Handler) HandleShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.api.GetShopBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

// HandleServices handles GET /shops/{slug}/services.
func (h *Handler) HandleServices(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, func(ctx context.Context, shopID string) (any, error) {
		return h.api.GetServices(ctx, shopID)
	})
}

// HandleBarbers handles GET /shops/{slug}/barbers.
func (h *Handler) HandleBarbers(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, func(ctx context.Context, shopID string) (any, error) {
		return h.api.GetBarbers(ctx, shopID)
	})
}

// HandlePlans handles GET /shops/{slug}/plans.
func (h *Handler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, func(ctx context.Context, shopID string) (any, error) {
		return h.api.GetPlans(ctx, shopID)
	})
}

// HandleReviews handles GET /shops/{slug}/reviews.
func (h *Handler) HandleReviews(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, func(ctx context.Context, shopID string) (any, error) {
		return h.api.GetReviews(ctx, shopID)
	})
}

// HandleProducts handles GET /shops/{slug}/products?page=N.
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	h.listing(w, r, func(ctx context.Context, shopID string) (any, error) {
		return h.api.GetStoreProducts(ctx, shopID, page)
	})
}

// listing resolves the slug to a shop id and fetches one of its
// collections. Every page load goes through the slug, so an unknown shop
// 404s the same way everywhere.
func (h *Handler) listing(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, shopID string) (any, error)) {
	shop, err := h.api.GetShopBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	payload, err := fetch(r.Context(), shop.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "shop not found")
			return
		}
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, apiErr.Message)
		return
	}
	h.logger.Error("storefront request failed", "path", r.URL.Path, "error", err)
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
