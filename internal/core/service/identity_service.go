package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

type IdentityService struct {
	users       ports.UserRepository
	revocations ports.RevocationStore
	log         zerolog.Logger
	now         func() time.Time
}

func NewIdentityService(users ports.UserRepository, revocations ports.RevocationStore, log zerolog.Logger) *IdentityService {
	return &IdentityService{users: users, revocations: revocations, log: log, now: time.Now}
}

// Resolve loads the caller behind a verified token from the current store
// state. Deleted and deactivated accounts are rejected.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, caller *domain.User, update ports.UserProfileUpdate) (*domain.User, error) {
	for name, field := range map[string]*string{
		"username":     update.Username,
		"state":        update.State,
		"district":     update.District,
		"city":         update.City,
		"phone_number": update.PhoneNumber,
	} {
		if field == nil {
			continue
		}
		*field = strings.TrimSpace(*field)
		if *field == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", domain.ErrInvalidInput, name)
		}
	}

	updated, err := s.users.UpdateProfile(ctx, caller.ID, update)
	if err != nil {
		return nil, err
	}
	if update.City != nil && domain.NormalizeCity(*update.City) != caller.CityKey() {
		s.log.Info().Str("user_id", caller.ID).Str("city", updated.City).Msg("user moved jurisdiction")
	}
	return updated, nil
}

// ChangePassword replaces the caller's password and invalidates every token
// issued before the change.
func (s *IdentityService) ChangePassword(ctx context.Context, caller *domain.User, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(caller.PasswordHash), []byte(current)) != nil {
		return domain.ErrWrongPassword
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, caller.ID, hash); err != nil {
		return err
	}
	s.revoke(ctx, caller.ID)
	return nil
}

// CreateEmployee creates an employee owned by admin. Location fields the
// admin leaves empty are copied from the admin's own profile.
func (s *IdentityService) CreateEmployee(ctx context.Context, admin *domain.User, in ports.CreateEmployeeInput) (*domain.User, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := requireFields(map[string]string{
		"username":     in.Username,
		"email":        in.Email,
		"phone_number": in.PhoneNumber,
	}); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	employee := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		State:        fallback(in.State, admin.State),
		District:     fallback(in.District, admin.District),
		City:         fallback(in.City, admin.City),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         domain.RoleEmployee,
		AdminID:      admin.ID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, employee)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("admin_id", admin.ID).Str("employee_id", created.ID).Msg("employee created")
	return created, nil
}

func (s *IdentityService) ListEmployees(ctx context.Context, admin *domain.User) ([]*domain.User, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx, ports.UserFilter{AdminID: admin.ID})
}

// ListManagedUsers returns the admin's employees and the citizens of the
// admin's city.
func (s *IdentityService) ListManagedUsers(ctx context.Context, admin *domain.User) ([]*domain.User, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx, ports.UserFilter{
		AdminID: admin.ID,
		CityKey: admin.CityKey(),
		Role:    domain.RoleCitizen,
	})
}

func (s *IdentityService) DeactivateUser(ctx context.Context, admin *domain.User, userID string) error {
	target, err := s.managedUser(ctx, admin, userID)
	if err != nil {
		return err
	}
	if err := s.users.SetActive(ctx, target.ID, false); err != nil {
		return err
	}
	s.revoke(ctx, target.ID)
	s.log.Info().Str("admin_id", admin.ID).Str("user_id", target.ID).Msg("user deactivated")
	return nil
}

// DeleteUser hard-deletes a managed user. Cases referencing the user are
// left as they are.
func (s *IdentityService) DeleteUser(ctx context.Context, admin *domain.User, userID string) error {
	target, err := s.managedUser(ctx, admin, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return err
	}
	s.revoke(ctx, target.ID)
	s.log.Info().Str("admin_id", admin.ID).Str("user_id", target.ID).Str("role", string(target.Role)).Msg("user deleted")
	return nil
}

// managedUser loads a user the admin may manage. Users outside the admin's
// reach are reported as not found.
func (s *IdentityService) managedUser(ctx context.Context, admin *domain.User, userID string) (*domain.User, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !UserManagedBy(admin, target) {
		return nil, domain.ErrUserNotFound
	}
	return target, nil
}

func (s *IdentityService) revoke(ctx context.Context, userID string) {
	if s.revocations == nil {
		return
	}
	if err := s.revocations.Revoke(ctx, userID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke outstanding tokens")
	}
}

func fallback(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
