package domain

import "time"

// CaseStatus represents the resolution state of a complaint.
type CaseStatus string

const (
	StatusPending    CaseStatus = "pending"
	StatusInProgress CaseStatus = "in-progress"
	StatusResolved   CaseStatus = "resolved"
)

// ParseCaseStatus validates a raw status string.
func ParseCaseStatus(s string) (CaseStatus, error) {
	switch st := CaseStatus(s); st {
	case StatusPending, StatusInProgress, StatusResolved:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// CasePriority ranks how urgently a complaint should be handled.
type CasePriority string

const (
	PriorityLow    CasePriority = "low"
	PriorityMedium CasePriority = "medium"
	PriorityHigh   CasePriority = "high"
	PriorityUrgent CasePriority = "urgent"
)

// ParseCasePriority validates a raw priority string. An empty value yields
// the default priority.
func ParseCasePriority(s string) (CasePriority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	switch p := CasePriority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", ErrInvalidPriority
}

// Case is a citizen-filed infrastructure complaint.
type Case struct {
	ID          string       `json:"id"`
	Reference   string       `json:"reference"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Status      CaseStatus   `json:"status"`
	Priority    CasePriority `json:"priority"`
	Location    string       `json:"location"`
	Latitude    string       `json:"latitude"`
	Longitude   string       `json:"longitude"`
	ImageURL    string       `json:"image_url,omitempty"`
	UserID      string       `json:"user_id"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	AssignedBy  string       `json:"assigned_by,omitempty"`
	AssignedAt  *time.Time   `json:"assigned_at,omitempty"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
	Version     int64        `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Assignment carries the fields written by an assign operation.
type Assignment struct {
	EmployeeID string
	AdminID    string
	At         time.Time
}

// StatusChange carries the fields written by a status transition.
// ResolvedAt is nil when the stored value must be left untouched.
type StatusChange struct {
	Status     CaseStatus
	ResolvedAt *time.Time
	At         time.Time
}
