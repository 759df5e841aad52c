package lifecycle

import (
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
)

// Policy decides what happens when a new record collides by name with a
// soft-deleted sibling.
type Policy int

const (
	// Suggest answers with a restore suggestion unless the caller forces creation.
	Suggest Policy = iota
	// AutoRestore brings the deleted sibling back instead of creating a new row.
	AutoRestore
)

// Collision describes same-named siblings found before a create.
type Collision struct {
	ActiveID  uuid.UUID
	DeletedID uuid.UUID
}

type Decision int

const (
	DecisionCreate Decision = iota
	DecisionDuplicate
	DecisionRestore
	DecisionSuggest
)

func (d Decision) String() string {
	switch d {
	case DecisionDuplicate:
		return "duplicate"
	case DecisionRestore:
		return "restore"
	case DecisionSuggest:
		return "suggest"
	default:
		return "create"
	}
}

func ResolveCreate(policy Policy, c Collision, force bool) Decision {
	if c.ActiveID != uuid.Nil {
		return DecisionDuplicate
	}

	if c.DeletedID == uuid.Nil {
		return DecisionCreate
	}

	if policy == AutoRestore {
		return DecisionRestore
	}

	if force {
		return DecisionCreate
	}

	return DecisionSuggest
}

// Err converts a blocking decision into the error returned to callers.
// DecisionCreate and DecisionRestore yield nil.
func (d Decision) Err(entity string, c Collision) error {
	return d.ErrOn(entity, "name", c)
}

// ErrOn is Err for entities whose uniqueness key is not their name.
func (d Decision) ErrOn(entity, key string, c Collision) error {
	switch d {
	case DecisionDuplicate:
		return apperr.Conflict(entity + " " + key + " already exists")
	case DecisionSuggest:
		return apperr.Conflict("A deleted "+strings.ToLower(entity)+" with this "+key+" exists. Restore it or retry with force=true").
			With("restore_suggestion", true).
			With("deleted_id", c.DeletedID)
	default:
		return nil
	}
}
