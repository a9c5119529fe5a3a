package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)

	token, err := issuer.CreateAccessToken("user-1", "buyer", "b@example.com")
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	claims, err := issuer.ParseValidate(token)
	if err != nil {
		t.Fatalf("ParseValidate: %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != "buyer" || claims.Email != "b@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestIssuer_RejectsForeignSecret(t *testing.T) {
	token, err := NewIssuer("another-secret-another-secret", time.Hour).CreateAccessToken("u", "buyer", "")
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	_, err = NewIssuer(testSecret, time.Hour).ParseValidate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.CreateAccessToken("u", "vendor", "")
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.ParseValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	if _, err := NewIssuer(testSecret, time.Hour).ParseValidate("not-a-jwt"); err == nil {
		t.Error("expected error")
	}
}

func TestClaimsContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Error("expected no claims on empty context")
	}
	ctx := ContextWithClaims(context.Background(), &Claims{Sub: "u1"})
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Sub != "u1" {
		t.Errorf("expected claims for u1, got %+v", c)
	}
}
