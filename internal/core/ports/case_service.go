package ports

import (
	"context"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

// CreateCaseInput carries the fields of a new complaint.
type CreateCaseInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Location    string
	Latitude    string
	Longitude   string
	ImageURL    string
}

// ListCasesInput carries the optional list filters supplied by the caller.
type ListCasesInput struct {
	Status   string
	Category string
	Priority string
	Search   string
	Page     int
	Limit    int
}

// ListCasesResult is returned by ListCases.
type ListCasesResult struct {
	Items      []*domain.Case
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AssignCaseInput carries an assignment request.
type AssignCaseInput struct {
	CaseID     string
	EmployeeID string
	Version    int64 // optional optimistic concurrency token
}

// UpdateStatusInput carries a status transition request.
type UpdateStatusInput struct {
	CaseID  string
	Status  string
	Version int64 // optional optimistic concurrency token
}

// CaseService defines use-case operations for cases. Every method is
// evaluated against the caller's scope.
type CaseService interface {
	CreateCase(ctx context.Context, caller *domain.User, input CreateCaseInput) (*domain.Case, error)
	GetCase(ctx context.Context, caller *domain.User, caseID string) (*domain.Case, error)
	ListCases(ctx context.Context, caller *domain.User, input ListCasesInput) (*ListCasesResult, error)
	CaseHistory(ctx context.Context, caller *domain.User, caseID string) ([]*domain.CaseEvent, error)
	AssignCase(ctx context.Context, caller *domain.User, input AssignCaseInput) (*domain.Case, error)
	UpdateCaseStatus(ctx context.Context, caller *domain.User, input UpdateStatusInput) (*domain.Case, error)
}
