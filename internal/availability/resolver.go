package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

// WarnMonthlyUnverified is surfaced when the monthly fetch fails and the
// resolver falls open (no day is marked unavailable).
const WarnMonthlyUnverified = "Could not verify this month's availability; all days are shown as open."

// MonthParams is the tuple a monthly resolution is keyed on. A result is
// only valid for the exact tuple it was fetched for.
type MonthParams struct {
	ShopID    string
	BarberID  string
	ServiceID string
	Month     Month
}

// Complete reports whether the tuple identifies a fetchable month. Missing
// IDs are the "nothing selected yet" steady state, not an error.
func (p MonthParams) Complete() bool {
	return p.ShopID != "" && p.BarberID != "" && p.ServiceID != ""
}

func (p MonthParams) cacheKey() string {
	return fmt.Sprintf("availability:month:%s:%s:%s:%s", p.ShopID, p.BarberID, p.ServiceID, p.Month.Key())
}

// MonthlyResult tags the resolved set with the params it was issued for, so
// consumers can discard results whose tuple no longer matches the current
// selection.
type MonthlyResult struct {
	Params      MonthParams
	Unavailable DaySet
	Warning     string
}

// MonthlyAPI is the slice of the upstream client the resolver needs.
type MonthlyAPI interface {
	GetMonthlyAvailability(ctx context.Context, shopID, barberID, serviceID string, year, month int) ([]string, error)
}

// Resolver fetches and caches per-month unavailable-day sets.
type Resolver struct {
	api      MonthlyAPI
	cache    *redis.Client // optional
	cacheTTL time.Duration
	logger   *logging.Logger
}

// NewResolver creates a monthly availability resolver. cache may be nil, in
// which case every resolution hits the upstream.
func NewResolver(api MonthlyAPI, cache *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{api: api, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Resolve returns the unavailable-day set for the tuple. It never returns an
// error: failures fall open to an empty set with a warning, so the
// first-available search downstream cannot hang or falsely block days.
func (r *Resolver) Resolve(ctx context.Context, params MonthParams) MonthlyResult {
	if !params.Complete() {
		return MonthlyResult{Params: params, Unavailable: DaySet{}}
	}

	if cached, ok := r.fromCache(ctx, params); ok {
		return MonthlyResult{Params: params, Unavailable: cached}
	}

	days, err := r.api.GetMonthlyAvailability(ctx,
		params.ShopID, params.BarberID, params.ServiceID,
		params.Month.Year, int(params.Month.Month))
	if err != nil {
		r.logger.Warn("monthly availability fetch failed",
			"shop", params.ShopID, "barber", params.BarberID,
			"month", params.Month.Key(), "error", err)
		return MonthlyResult{Params: params, Unavailable: DaySet{}, Warning: WarnMonthlyUnverified}
	}

	set := DaySet{}
	for _, d := range days {
		// The set is scoped to exactly one month; drop anything the
		// server reports outside it.
		if params.Month.Contains(d) {
			set[d] = struct{}{}
		}
	}

	r.toCache(ctx, params, set)
	return MonthlyResult{Params: params, Unavailable: set}
}

func (r *Resolver) fromCache(ctx context.Context, params MonthParams) (DaySet, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, err := r.cache.Get(ctx, params.cacheKey()).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("availability cache read failed", "key", params.cacheKey(), "error", err)
		return nil, false
	}
	var days []string
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, false
	}
	return NewDaySet(days...), true
}

func (r *Resolver) toCache(ctx context.Context, params MonthParams, set DaySet) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(set.Dates())
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, params.cacheKey(), data, r.cacheTTL).Err(); err != nil {
		r.logger.Warn("availability cache write failed", "key", params.cacheKey(), "error", err)
	}
}

var _ MonthlyAPI = (*upstream.Client)(nil)
