// Package validate collects field-level rule violations before any mutation.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// maxMoney is the first value NUMERIC(15,2) cannot hold.
var maxMoney = decimal.New(1, 13)

// Validator accumulates messages; Err reports the first one and carries all
// of them in the payload.
type Validator struct {
	msgs []string
}

func New() *Validator {
	return &Validator{}
}

// Check records msg when ok is false.
func (v *Validator) Check(ok bool, msg string) *Validator {
	if !ok {
		v.msgs = append(v.msgs, msg)
	}

	return v
}

func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field+" is required")
}

func (v *Validator) MaxLen(field, value string, n int) *Validator {
	return v.Check(len([]rune(value)) <= n, field+" is too long")
}

func (v *Validator) Positive(field string, d decimal.Decimal) *Validator {
	return v.Check(d.IsPositive(), field+" must be greater than 0")
}

func (v *Validator) NonNegative(field string, d decimal.Decimal) *Validator {
	return v.Check(!d.IsNegative(), field+" must be greater than or equal to 0")
}

// Money requires an amount the store keeps exactly: at most two decimal places
// and thirteen integer digits.
func (v *Validator) Money(field string, d decimal.Decimal) *Validator {
	v.Check(d.Equal(d.Truncate(2)), field+" must have at most 2 decimal places")
	return v.Check(d.Abs().LessThan(maxMoney), field+" is too large")
}

func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	return v.Check(false, "Invalid "+field)
}

// After requires t to be strictly later than ref.
func (v *Validator) After(t, ref time.Time, msg string) *Validator {
	return v.Check(t.After(ref), msg)
}

// NotBefore compares calendar days only.
func (v *Validator) NotBefore(t, ref time.Time, msg string) *Validator {
	return v.Check(!Day(t).Before(Day(ref)), msg)
}

func (v *Validator) Email(field, value string) *Validator {
	return v.Check(emailPattern.MatchString(value), "Invalid "+field+" format")
}

// Password requires eight characters mixing upper and lower case, a digit and
// a symbol.
func (v *Validator) Password(field, value string) *Validator {
	var upper, lowerCase, digit, special bool

	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lowerCase = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	ok := len(value) >= 8 && upper && lowerCase && digit && special

	return v.Check(ok, field+" must be at least 8 characters and contain upper and lower case letters, a digit and a special character")
}

func (v *Validator) Valid() bool {
	return len(v.msgs) == 0
}

func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}

	e := apperr.Validation(v.msgs[0])
	if len(v.msgs) > 1 {
		return e.With("errors", v.msgs)
	}

	return e
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
