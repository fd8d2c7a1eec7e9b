package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when an addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate keys and stale writes.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest is a user-facing input problem that is not a field validation failure.
	ErrBadRequest = errors.New("bad request")
	// ErrEmptyCart is returned by checkout when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrForbidden is returned when the caller may not touch the addressed record.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError aggregates field level failures. Keys are JSON field names.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match a ValidationError with errors.Is(err, ErrBadRequest).
func (e *ValidationError) Unwrap() error { return ErrBadRequest }

// FromValidator converts validator output into a ValidationError.
// Errors of any other kind are returned unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}

// BadRequest builds an ErrBadRequest carrying a user-facing message.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}
