package ports

import (
	"context"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

// CaseEventRepository persists the append-only case audit log.
type CaseEventRepository interface {
	Insert(ctx context.Context, event *domain.CaseEvent) error
	// ListByCase returns the events of one case, oldest first.
	ListByCase(ctx context.Context, caseID string) ([]*domain.CaseEvent, error)
}

// CaseEventRecorder accepts events for asynchronous persistence.
type CaseEventRecorder interface {
	Record(event domain.CaseEvent)
}
