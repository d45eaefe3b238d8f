package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrCaseNotFound       = errors.New("case not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrStaleVersion       = errors.New("case was modified by another request")
	ErrInvalidInput       = errors.New("invalid request")
	ErrInvalidStatus      = errors.New("invalid case status")
	ErrInvalidPriority    = errors.New("invalid case priority")
	ErrInvalidAssignee    = errors.New("assignee must be an active employee of the assigning admin")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrWrongPassword      = errors.New("current password is incorrect")
	// ErrDuplicateReference is reported by the case store when a generated
	// reference is already taken.
	ErrDuplicateReference = errors.New("case reference already in use")
)

// Kind is the stable error class exposed to API clients.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidRequest  Kind = "invalid_request"
	KindInternal        Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrInvalidCredentials, KindUnauthenticated},
	{ErrForbidden, KindForbidden},
	{ErrUserNotFound, KindNotFound},
	{ErrCaseNotFound, KindNotFound},
	{ErrUserExists, KindConflict},
	{ErrStaleVersion, KindConflict},
	{ErrInvalidInput, KindInvalidRequest},
	{ErrInvalidStatus, KindInvalidRequest},
	{ErrInvalidPriority, KindInvalidRequest},
	{ErrInvalidAssignee, KindInvalidRequest},
	{ErrWeakPassword, KindInvalidRequest},
	{ErrWrongPassword, KindInvalidRequest},
}

// KindOf classifies err. Anything unrecognised is KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
