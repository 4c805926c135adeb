package customer

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	signed, err := m.Issue("cust-1", "Vito", "11987654321", "upstream-token")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := m.Parse(signed)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if claims.CustomerID != "cust-1" || claims.Name != "Vito" || claims.Phone != "11987654321" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.UpstreamToken != "upstream-token" {
		t.Errorf("upstream token = %q", claims.UpstreamToken)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokenManager("secret-a", time.Hour).Issue("cust-1", "Vito", "11987654321", "t")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Parse(signed); err != ErrInvalidToken {
		t.Fatalf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	signed, err := m.Issue("cust-1", "Vito", "11987654321", "t")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := m.Parse(signed); err != ErrInvalidToken {
		t.Fatalf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if _, err := m.Parse("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("Parse() error = %v, want ErrInvalidToken", err)
	}
}
