package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. Inactive users with a DeletedAt are soft-deleted and
// may come back by logging in within the restore window.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
