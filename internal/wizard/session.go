// Package wizard owns the booking-wizard flow: per-visitor session state,
// the availability pipeline that derives what the calendar shows, and the
// HTTP surface the storefront UI drives.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/barberflow/booking-storefront/internal/availability"
)

// ErrSessionNotFound is returned when a wizard session id is unknown or
// expired.
var ErrSessionNotFound = errors.New("wizard: session not found")

// Session is one visitor's progress through the booking wizard. The
// selection (Date, Time) is owned here; the availability core only derives
// from it and proposes updates.
type Session struct {
	ID       string `json:"id"`
	ShopSlug string `json:"shop_slug"`
	ShopID   string `json:"shop_id"`

	ServiceID string `json:"service_id"`
	BarberID  string `json:"barber_id"`

	// Displayed calendar month. Month is 1-12.
	Year  int `json:"year"`
	Month int `json:"month"`

	Date string `json:"date"` // ISO date, empty until picked
	Time string `json:"time"` // HH:MM, empty until picked; never set without Date

	// SearchExhausted latches once the first-available search ran out of
	// horizon, so the wizard stops advancing months until params change.
	SearchExhausted bool `json:"search_exhausted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayedMonth returns the session's calendar month value.
func (s *Session) DisplayedMonth() availability.Month {
	return availability.Month{Year: s.Year, Month: time.Month(s.Month)}
}

// SetMonth replaces the displayed month.
func (s *Session) SetMonth(m availability.Month) {
	s.Year = m.Year
	s.Month = int(m.Month)
}

// ClearSelection drops date and time together and re-arms the
// first-available search.
func (s *Session) ClearSelection() {
	s.Date = ""
	s.Time = ""
	s.SearchExhausted = false
}

// paramsKey identifies the fetch-relevant parameter snapshot. Two sessions
// states with equal keys would issue identical fetches, so a result derived
// under one is committable under the other.
func (s *Session) paramsKey() string {
	return fmt.Sprintf("%s|%s|%s|%04d-%02d|%s", s.ShopID, s.ServiceID, s.BarberID, s.Year, s.Month, s.Date)
}

// NewSession creates a session displaying the month containing now.
func NewSession(slug, shopID string, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ShopSlug:  slug,
		ShopID:    shopID,
		Year:      now.Year(),
		Month:     int(now.Month()),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Store persists wizard sessions in redis with a sliding TTL.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a session store.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: redisClient, ttl: ttl}
}

func (s *Store) key(id string) string {
	return fmt.Sprintf("wizard:session:%s", id)
}

// Get retrieves a session by id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("wizard: get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("wizard: unmarshal session: %w", err)
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("wizard: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("wizard: save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("wizard: delete session: %w", err)
	}
	return nil
}
