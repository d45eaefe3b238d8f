package ports

import (
	"context"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

// CreateEmployeeInput carries the fields an admin supplies for a new
// employee. Empty location fields default to the admin's own.
type CreateEmployeeInput struct {
	Username    string
	Email       string
	Password    string
	State       string
	District    string
	City        string
	PhoneNumber string
}

// IdentityService covers caller resolution, self-service profile operations
// and admin user management.
type IdentityService interface {
	// Resolve loads the caller behind a verified token. Missing or inactive
	// users yield domain.ErrUnauthenticated.
	Resolve(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller *domain.User, update UserProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, caller *domain.User, current, next string) error

	CreateEmployee(ctx context.Context, admin *domain.User, input CreateEmployeeInput) (*domain.User, error)
	ListEmployees(ctx context.Context, admin *domain.User) ([]*domain.User, error)
	ListManagedUsers(ctx context.Context, admin *domain.User) ([]*domain.User, error)
	DeactivateUser(ctx context.Context, admin *domain.User, userID string) error
	DeleteUser(ctx context.Context, admin *domain.User, userID string) error
}
