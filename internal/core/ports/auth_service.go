package ports

import (
	"context"
	"time"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

// SignupInput carries the citizen self-registration fields.
type SignupInput struct {
	Username    string
	Email       string
	Password    string
	State       string
	District    string
	City        string
	PhoneNumber string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// TokenClaims is the identity carried by a verified bearer token.
type TokenClaims struct {
	UserID   string
	Role     domain.Role
	IssuedAt time.Time
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier checks a bearer token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// RevocationStore records the instant up to which a user's tokens stop
// being accepted. Tokens issued in or before that second are rejected.
type RevocationStore interface {
	Revoke(ctx context.Context, userID string, at time.Time) error
	// RevokedAt returns the revocation instant, or the zero time if none.
	RevokedAt(ctx context.Context, userID string) (time.Time, error)
}
