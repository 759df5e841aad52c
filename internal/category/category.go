package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

type Category struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	lifecycle.State
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (c *Category) OwnerID() uuid.UUID { return c.UserID }
