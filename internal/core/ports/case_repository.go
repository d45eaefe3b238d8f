package ports

import (
	"context"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

// ListCasesFilter carries all query parameters for listing cases.
// The scope fields are always filled in by the service layer.
type ListCasesFilter struct {
	ReporterID  string   // citizen scope
	ReporterIDs []string // admin scope; nil = unrestricted, empty = nothing visible
	AssignedTo  string   // employee scope

	Status   string // optional
	Category string // optional
	Priority string // optional
	Search   string // optional: partial match on title, description or location
	Page     int    // 1-based
	Limit    int
}

// CaseRepository is the case store.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) (*domain.Case, error)
	FindByID(ctx context.Context, id string) (*domain.Case, error)
	// List returns a page of cases matching filter and the total count.
	List(ctx context.Context, filter ListCasesFilter) ([]*domain.Case, int64, error)
	// Assign writes the assignment fields. When expectedVersion is non-zero
	// the write only applies to that version; otherwise it is last-write-wins.
	Assign(ctx context.Context, id string, a domain.Assignment, expectedVersion int64) (*domain.Case, error)
	// UpdateStatus writes the status fields with the same version semantics as Assign.
	UpdateStatus(ctx context.Context, id string, change domain.StatusChange, expectedVersion int64) (*domain.Case, error)
}
