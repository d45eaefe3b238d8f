package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartcity/complaints-api/internal/api/metrics"
	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	CallerKey = "caller"
	RoleKey   = "role"
)

// CallerResolver loads the current state of the user behind a token.
type CallerResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.User, error)
}

// Auth validates the bearer token, rejects revoked tokens and injects the
// caller, re-read from the store, into the context. Every rejection is
// reported as domain.ErrUnauthenticated so clients cannot tell the causes
// apart.
func Auth(verifier ports.TokenVerifier, revocations ports.RevocationStore, resolver CallerResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return reject("missing_token")
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return reject("invalid_token")
			}

			ctx := c.Request().Context()
			if revocations != nil {
				revokedAt, err := revocations.RevokedAt(ctx, claims.UserID)
				if err != nil {
					return fmt.Errorf("auth: %w", err)
				}
				// iat has one-second precision, so a token minted in the
				// revocation's second cannot be ordered against it and is
				// rejected.
				if !revokedAt.IsZero() && !claims.IssuedAt.After(revokedAt) {
					return reject("revoked")
				}
			}

			caller, err := resolver.Resolve(ctx, claims.UserID)
			if err != nil {
				if domain.KindOf(err) == domain.KindUnauthenticated {
					return reject("unknown_user")
				}
				return fmt.Errorf("auth: %w", err)
			}

			c.Set(CallerKey, caller)
			c.Set(RoleKey, string(caller.Role))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(reason string) error {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	return domain.ErrUnauthenticated
}
