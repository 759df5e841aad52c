// Package lifecycle implements the active/soft-deleted state machine shared by
// every owned record.
package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrWrongState is returned when a transition is requested from a state that
// does not allow it (soft-deleting a deleted record, restoring an active one).
var ErrWrongState = errors.New("record is not in the expected state")

// State is embedded by every owned entity.
type State struct {
	IsDeleted bool
	DeletedAt *time.Time
}

func (s *State) SoftDelete(now time.Time) error {
	if s.IsDeleted {
		return ErrWrongState
	}

	s.IsDeleted = true
	s.DeletedAt = &now

	return nil
}

func (s *State) Restore() error {
	if !s.IsDeleted {
		return ErrWrongState
	}

	s.IsDeleted = false
	s.DeletedAt = nil

	return nil
}

func (s State) Deleted() bool { return s.IsDeleted }

// Ownable is implemented by every entity scoped to a user.
type Ownable interface {
	OwnerID() uuid.UUID
	Deleted() bool
}

// Filter selects records by lifecycle state.
type Filter int

const (
	Active Filter = iota
	Deleted
	Any
)

func (f Filter) Matches(deleted bool) bool {
	switch f {
	case Active:
		return !deleted
	case Deleted:
		return deleted
	default:
		return true
	}
}

// Owned reports whether v belongs to userID and is in the state f asks for.
// Absent, foreign and wrong-state records are indistinguishable to callers.
func Owned(v Ownable, userID uuid.UUID, f Filter) bool {
	return v != nil && v.OwnerID() == userID && f.Matches(v.Deleted())
}

// RestoreWindowOpen reports whether a record deleted at deletedAt may still be
// brought back automatically.
func RestoreWindowOpen(deletedAt, now time.Time, window time.Duration) bool {
	return now.Sub(deletedAt) < window
}
