package store

import (
	"context"
	"errors"
	"time"

	"github.com/codearena/portal/internal/portal/types"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// ViolationFilter narrows a log query.  Zero values mean "no constraint";
// Since and Until are inclusive bounds on the ingestion timestamp.
type ViolationFilter struct {
	Type     types.ViolationType
	Severity types.Severity
	Since    *time.Time
	Until    *time.Time
}

// Matches reports whether a violation passes every set constraint.
func (f ViolationFilter) Matches(v types.Violation) bool {
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	if f.Severity != "" && v.Severity != f.Severity {
		return false
	}
	if f.Since != nil && v.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && v.Timestamp.After(*f.Until) {
		return false
	}
	return true
}

// ViolationStore is an append-only log of confirmed violations.  Append
// assigns the record's id and timestamp when they are unset and returns the
// stored record.  There is no update or delete; the log only grows.
type ViolationStore interface {
	Append(ctx context.Context, v types.Violation) (types.Violation, error)
	List(ctx context.Context, f ViolationFilter) ([]types.Violation, error)
}

// UserStore holds the portal's user directory.
type UserStore interface {
	GetUser(ctx context.Context, id string) (types.User, error)
	GetUserByUsername(ctx context.Context, username string) (types.User, error)
	// CreateUser assigns the user's id and returns the stored record.
	// Returns ErrUsernameTaken on a duplicate username.
	CreateUser(ctx context.Context, u types.User) (types.User, error)
	UpdateUserAccess(ctx context.Context, id, round, status string) (types.User, error)
	UpdatePassword(ctx context.Context, id, password string) error
	ListUsers(ctx context.Context) ([]types.User, error)
	DeleteUser(ctx context.Context, id string) error
}
