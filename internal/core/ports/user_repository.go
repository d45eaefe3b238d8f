package ports

import (
	"context"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

// UserFilter selects users for administrative listings. Non-empty fields
// are combined with OR so an admin can list "my employees or citizens of
// my city" in a single query.
type UserFilter struct {
	AdminID string      // employees whose admin_id matches
	CityKey string      // users whose normalised city matches...
	Role    domain.Role // ...and whose role matches (only applied with CityKey)
}

// UserProfileUpdate carries the self-service mutable fields. Nil fields are
// left untouched.
type UserProfileUpdate struct {
	Username    *string
	State       *string
	District    *string
	City        *string
	PhoneNumber *string
}

// UserRepository is the identity store.
type UserRepository interface {
	// Create inserts user and returns it with its assigned ID. A duplicate
	// username or email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	// IDsByCity returns the IDs of every user whose normalised city is cityKey.
	IDsByCity(ctx context.Context, cityKey string) ([]string, error)
	UpdateProfile(ctx context.Context, id string, update UserProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	AddRewardPoints(ctx context.Context, id string, points int) error
	Delete(ctx context.Context, id string) error
}
