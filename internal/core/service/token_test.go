package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(&domain.User{ID: "u1", Role: domain.RoleEmployee})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleEmployee {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.IssuedAt.Equal(issuedAt) {
		t.Fatalf("unexpected iat: %v", claims.IssuedAt)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	start := time.Now()
	svc.now = func() time.Time { return start }
	token, _ := svc.Issue(&domain.User{ID: "u1", Role: domain.RoleCitizen})

	svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _ := NewTokenService("secret", time.Hour).Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})

	if _, err := NewTokenService("other", time.Hour).Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "u1", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenService("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_RejectsMissingExpiry(t *testing.T) {
	claims := jwt.MapClaims{"sub": "u1", "role": "admin"}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	if _, err := NewTokenService("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("Verify(%q): expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestTokenService_Validate(t *testing.T) {
	if err := NewTokenService("", time.Hour).Validate(); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
	if err := NewTokenService("secret", 0).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := NewTokenService("secret", 0).TTL(); got != 24*time.Hour {
		t.Fatalf("expected default TTL, got %v", got)
	}
}
