package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// referenceAttempts bounds how often a case insert is retried with a
	// fresh reference after a collision.
	referenceAttempts = 3
)

type CaseService struct {
	cases        ports.CaseRepository
	users        ports.UserRepository
	history      ports.CaseEventRepository
	recorder     ports.CaseEventRecorder
	rewardPoints int
	log          zerolog.Logger
	now          func() time.Time
	newReference func() string
}

// NewCaseService wires the case lifecycle. rewardPoints is credited to the
// reporter each time one of their cases becomes resolved; zero disables it.
func NewCaseService(
	cases ports.CaseRepository,
	users ports.UserRepository,
	history ports.CaseEventRepository,
	recorder ports.CaseEventRecorder,
	rewardPoints int,
	log zerolog.Logger,
) *CaseService {
	return &CaseService{
		cases:        cases,
		users:        users,
		history:      history,
		recorder:     recorder,
		rewardPoints: rewardPoints,
		log:          log,
		now:          time.Now,
		newReference: generateReference,
	}
}

// CreateCase files a new complaint on behalf of a citizen. New cases are
// always pending and unassigned.
func (s *CaseService) CreateCase(ctx context.Context, caller *domain.User, in ports.CreateCaseInput) (*domain.Case, error) {
	if caller.Role != domain.RoleCitizen {
		return nil, domain.ErrForbidden
	}

	if err := requireFields(map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"latitude":    in.Latitude,
		"longitude":   in.Longitude,
	}); err != nil {
		return nil, err
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	priority, err := domain.ParseCasePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Case{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Status:      domain.StatusPending,
		Priority:    priority,
		Location:    strings.TrimSpace(in.Location),
		Latitude:    strings.TrimSpace(in.Latitude),
		Longitude:   strings.TrimSpace(in.Longitude),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		UserID:      caller.ID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created *domain.Case
	for attempt := 1; ; attempt++ {
		c.Reference = s.newReference()
		created, err = s.cases.Create(ctx, c)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateReference) && attempt < referenceAttempts {
			s.log.Warn().Str("reference", c.Reference).Int("attempt", attempt).Msg("case reference collision, retrying")
			continue
		}
		s.log.Error().Err(err).Str("user_id", caller.ID).Msg("failed to create case")
		return nil, err
	}

	s.record(domain.CaseEvent{
		CaseID:   created.ID,
		Kind:     domain.EventCaseCreated,
		ActorID:  caller.ID,
		ToStatus: created.Status,
		Version:  created.Version,
	})
	s.log.Info().Str("case_id", created.ID).Str("reference", created.Reference).Str("user_id", caller.ID).Msg("case created")
	return created, nil
}

func (s *CaseService) GetCase(ctx context.Context, caller *domain.User, caseID string) (*domain.Case, error) {
	return s.visibleCase(ctx, caller, caseID)
}

// ListCases returns the page of cases visible to caller that match the
// optional filters.
func (s *CaseService) ListCases(ctx context.Context, caller *domain.User, in ports.ListCasesInput) (*ports.ListCasesResult, error) {
	if in.Status != "" {
		if _, err := domain.ParseCaseStatus(in.Status); err != nil {
			return nil, err
		}
	}
	if in.Priority != "" {
		if _, err := domain.ParseCasePriority(in.Priority); err != nil {
			return nil, err
		}
	}

	page, limit := normalizePage(in.Page, in.Limit)
	filter := ports.ListCasesFilter{
		Status:   in.Status,
		Category: strings.TrimSpace(in.Category),
		Priority: in.Priority,
		Search:   strings.TrimSpace(in.Search),
		Page:     page,
		Limit:    limit,
	}
	if err := s.scopeCases(ctx, caller, &filter); err != nil {
		return nil, err
	}

	items, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListCasesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// CaseHistory returns the audit events of a case the caller can see.
func (s *CaseService) CaseHistory(ctx context.Context, caller *domain.User, caseID string) ([]*domain.CaseEvent, error) {
	c, err := s.visibleCase(ctx, caller, caseID)
	if err != nil {
		return nil, err
	}
	return s.history.ListByCase(ctx, c.ID)
}

// AssignCase hands a case in the admin's jurisdiction to one of the admin's
// active employees. The status is not touched and a previous assignment is
// overwritten.
func (s *CaseService) AssignCase(ctx context.Context, caller *domain.User, in ports.AssignCaseInput) (*domain.Case, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: missing employee_id", domain.ErrInvalidInput)
	}

	c, err := s.visibleCase(ctx, caller, in.CaseID)
	if err != nil {
		return nil, err
	}

	employee, err := s.users.FindByID(ctx, in.EmployeeID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.ErrInvalidAssignee
		}
		return nil, err
	}
	if employee.Role != domain.RoleEmployee || !employee.IsActive || employee.AdminID != caller.ID {
		return nil, domain.ErrInvalidAssignee
	}

	updated, err := s.cases.Assign(ctx, c.ID, domain.Assignment{
		EmployeeID: employee.ID,
		AdminID:    caller.ID,
		At:         s.now().UTC(),
	}, in.Version)
	if err != nil {
		return nil, err
	}

	s.record(domain.CaseEvent{
		CaseID:     updated.ID,
		Kind:       domain.EventCaseAssigned,
		ActorID:    caller.ID,
		AssignedTo: employee.ID,
		Version:    updated.Version,
	})
	s.log.Info().
		Str("case_id", updated.ID).
		Str("admin_id", caller.ID).
		Str("employee_id", employee.ID).
		Str("previous_assignee", c.AssignedTo).
		Msg("case assigned")
	return updated, nil
}

// UpdateCaseStatus moves a case to a new status. Admins may update any case
// in their jurisdiction, employees only the cases assigned to them. Any of
// the three statuses may follow any other.
func (s *CaseService) UpdateCaseStatus(ctx context.Context, caller *domain.User, in ports.UpdateStatusInput) (*domain.Case, error) {
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleEmployee {
		return nil, domain.ErrForbidden
	}
	next, err := domain.ParseCaseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	c, err := s.visibleCase(ctx, caller, in.CaseID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	change := domain.StatusChange{Status: next, At: now}
	if next == domain.StatusResolved {
		change.ResolvedAt = &now
	}

	updated, err := s.cases.UpdateStatus(ctx, c.ID, change, in.Version)
	if err != nil {
		return nil, err
	}

	if next == domain.StatusResolved && c.Status != domain.StatusResolved {
		s.creditReporter(ctx, updated)
	}

	s.record(domain.CaseEvent{
		CaseID:     updated.ID,
		Kind:       domain.EventStatusChanged,
		ActorID:    caller.ID,
		FromStatus: c.Status,
		ToStatus:   next,
		Version:    updated.Version,
	})
	s.log.Info().
		Str("case_id", updated.ID).
		Str("actor_id", caller.ID).
		Str("from", string(c.Status)).
		Str("to", string(next)).
		Msg("case status changed")
	return updated, nil
}

// creditReporter is best effort; a failure never undoes the transition.
func (s *CaseService) creditReporter(ctx context.Context, c *domain.Case) {
	if s.rewardPoints <= 0 {
		return
	}
	if err := s.users.AddRewardPoints(ctx, c.UserID, s.rewardPoints); err != nil {
		s.log.Warn().Err(err).Str("case_id", c.ID).Str("user_id", c.UserID).Msg("failed to credit reward points")
	}
}

func (s *CaseService) record(e domain.CaseEvent) {
	if s.recorder == nil {
		return
	}
	e.ID = uuid.NewString()
	e.OccurredAt = s.now().UTC()
	s.recorder.Record(e)
}

func validateCoordinates(lat, lng string) error {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || la < -90 || la > 90 {
		return fmt.Errorf("%w: latitude must be a decimal between -90 and 90", domain.ErrInvalidInput)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || lo < -180 || lo > 180 {
		return fmt.Errorf("%w: longitude must be a decimal between -180 and 180", domain.ErrInvalidInput)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// generateReference returns a human-friendly case code in the format SC-XXXXXXXX.
func generateReference() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("SC-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("SC-%08X", b)
}
