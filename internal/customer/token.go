// Package customer handles storefront customer auth (phone + OTP through
// the upstream) and the my-bookings area.
package customer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for missing, malformed, expired, or otherwise
// unverifiable customer tokens.
var ErrInvalidToken = errors.New("customer: invalid token")

// Claims is what a storefront customer token carries: the customer's
// identity for display plus the upstream bearer token needed to act on
// their bookings. The upstream token never reaches the browser on its own.
type Claims struct {
	CustomerID    string `json:"cid"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	UpstreamToken string `json:"ut"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed customer session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager. ttl bounds how long a customer
// session lives; the upstream token inside usually expires sooner.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the customer.
func (m *TokenManager) Issue(customerID, name, phone, upstreamToken string) (string, error) {
	now := time.Now()
	claims := Claims{
		CustomerID:    customerID,
		Name:          name,
		Phone:         phone,
		UpstreamToken: upstreamToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("customer: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a session token and returns its claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
