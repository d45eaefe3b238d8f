package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

// CaseVisibleTo reports whether caller may read c. reporter is the user who
// filed c and is only consulted for admins; nil means the reporter no longer
// exists, which hides the case from every admin.
//
//	citizen  → own reports
//	employee → cases assigned to them
//	admin    → cases whose reporter lives in the admin's city
func CaseVisibleTo(caller *domain.User, c *domain.Case, reporter *domain.User) bool {
	switch caller.Role {
	case domain.RoleCitizen:
		return c.UserID == caller.ID
	case domain.RoleEmployee:
		return c.AssignedTo != "" && c.AssignedTo == caller.ID
	case domain.RoleAdmin:
		if reporter == nil || reporter.ID != c.UserID {
			return false
		}
		key := caller.CityKey()
		return key != "" && reporter.CityKey() == key
	}
	return false
}

// UserManagedBy reports whether admin may manage target: its own employees
// and the citizens of its city.
func UserManagedBy(admin, target *domain.User) bool {
	if admin.Role != domain.RoleAdmin || target.ID == admin.ID {
		return false
	}
	switch target.Role {
	case domain.RoleEmployee:
		return target.AdminID == admin.ID
	case domain.RoleCitizen:
		key := admin.CityKey()
		return key != "" && target.CityKey() == key
	}
	return false
}

// scopeCases restricts filter to the cases caller may read. Scope is derived
// from current store state on every call.
func (s *CaseService) scopeCases(ctx context.Context, caller *domain.User, filter *ports.ListCasesFilter) error {
	switch caller.Role {
	case domain.RoleCitizen:
		filter.ReporterID = caller.ID
	case domain.RoleEmployee:
		filter.AssignedTo = caller.ID
	case domain.RoleAdmin:
		ids, err := s.users.IDsByCity(ctx, caller.CityKey())
		if err != nil {
			return fmt.Errorf("scope cases: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		filter.ReporterIDs = ids
	default:
		return domain.ErrForbidden
	}
	return nil
}

// visibleCase loads a case and hides it as not found when it lies outside
// the caller's scope.
func (s *CaseService) visibleCase(ctx context.Context, caller *domain.User, caseID string) (*domain.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var reporter *domain.User
	if caller.Role == domain.RoleAdmin {
		reporter, err = s.users.FindByID(ctx, c.UserID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("load reporter: %w", err)
		}
	}

	if !CaseVisibleTo(caller, c, reporter) {
		return nil, domain.ErrCaseNotFound
	}
	return c, nil
}
