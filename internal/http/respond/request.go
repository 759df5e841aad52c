package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode parses a JSON body into dst and runs its validate tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if e, ok := apperr.As(err); ok {
			return e
		}

		return apperr.Validation("Invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return apperr.Validation(fieldMessage(fields[0]))
		}

		return apperr.Validation("Invalid request body")
	}

	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " is too long"
	case "email":
		return "Invalid " + fe.Field() + " format"
	default:
		return "Invalid " + fe.Field()
	}
}

// ID reads the {id} path parameter.
func ID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid id")
	}

	return id, nil
}

// Page reads page and per_page, falling back to defaults on bad input.
func Page(r *http.Request, perPage int) pagination.Params {
	q := r.URL.Query()
	p, _ := strconv.Atoi(q.Get("page"))
	n, _ := strconv.Atoi(q.Get("per_page"))

	return pagination.New(p, n, perPage)
}

// Flag reports whether the query parameter is set to a true value.
func Flag(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// Date accepts "2006-01-02" as well as RFC 3339 timestamps.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return apperr.Validation("Invalid date format, expected YYYY-MM-DD")
}

// Ptr returns nil for a nil d.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}

	return &d.Time
}

// StateChange runs a lifecycle operation on the {id} record and answers
// with message on success.
func StateChange(w http.ResponseWriter, r *http.Request, userID uuid.UUID, op, message string,
	fn func(ctx context.Context, id, userID uuid.UUID) error,
) {
	id, err := ID(r)
	if err != nil {
		Error(w, r, op, err)
		return
	}

	if err := fn(r.Context(), id, userID); err != nil {
		Error(w, r, op, err)
		return
	}

	JSON(w, http.StatusOK, message, nil)
}
