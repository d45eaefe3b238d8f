package domain

import "time"

// CaseEventKind identifies what happened to a case.
type CaseEventKind string

const (
	EventCaseCreated   CaseEventKind = "created"
	EventCaseAssigned  CaseEventKind = "assigned"
	EventStatusChanged CaseEventKind = "status_changed"
)

// CaseEvent is one append-only entry in a case's audit history.
type CaseEvent struct {
	ID         string        `json:"id"`
	CaseID     string        `json:"case_id"`
	Kind       CaseEventKind `json:"kind"`
	ActorID    string        `json:"actor_id"`
	FromStatus CaseStatus    `json:"from_status,omitempty"`
	ToStatus   CaseStatus    `json:"to_status,omitempty"`
	AssignedTo string        `json:"assigned_to,omitempty"`
	Version    int64         `json:"version"`
	OccurredAt time.Time     `json:"occurred_at"`
}
