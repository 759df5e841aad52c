// Package apperr holds the error taxonomy shared by every service. Handlers
// translate a Kind into an HTTP status without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInsufficientFunds
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindAuth:
		return "auth"
	default:
		return "store"
	}
}

// Status maps the kind onto the response status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Payload is merged into the response body next to message and status_code.
	Payload map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With returns a copy of e carrying an extra payload entry.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Payload = make(map[string]any, len(e.Payload)+1)

	for k, v := range e.Payload {
		cp.Payload[k] = v
	}

	cp.Payload[key] = value

	return &cp
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// NotFound builds the "<Entity> not found" error used for absent, foreign and
// wrong-state records alike.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func InsufficientFunds(msg string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// KindOf reports the kind of err. Errors outside the taxonomy count as store
// failures.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}

	return KindStore
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
