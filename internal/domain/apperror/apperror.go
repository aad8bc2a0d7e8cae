// Package apperror holds the error taxonomy shared by stores, use cases
// and handlers: field-scoped validation failures, missing rows and
// backend failures.
package apperror

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFound is wrapped by stores when a lookup returns no row.
var ErrNotFound = errors.New("not found")

// Violations maps a form field to a user-facing message.
type Violations map[string]string

// Empty reports whether no violation was recorded.
func (v Violations) Empty() bool { return len(v) == 0 }

// Required records msg for field when value is blank after trimming.
func (v Violations) Required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		v[field] = msg
	}
}

// Add records msg for field unless the field already has a message.
func (v Violations) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns a *ValidationError for a non-empty set, nil otherwise.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}

// ValidationError blocks a submission. It is recoverable by editing the
// offending fields; nothing is persisted while it is returned.
type ValidationError struct {
	Fields Violations
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldErrors extracts the field map from err, or nil when err is not a
// validation failure.
func FieldErrors(err error) Violations {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// StoreError is a backend failure. Code is the backend-specific code
// (SQLite extended result code or Postgres SQLSTATE) when one is known.
type StoreError struct {
	Op       string
	Table    string
	Code     string
	conflict bool
	Err      error
}

// NewStoreError builds a StoreError; conflict marks unique-constraint
// violations.
func NewStoreError(op, table, code string, conflict bool, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Code: code, conflict: conflict, Err: err}
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: [%s] %v", e.Op, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Conflict reports a unique-constraint violation.
func (e *StoreError) Conflict() bool { return e.conflict }

// IsConflict reports whether err carries a unique-constraint violation.
func IsConflict(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Conflict()
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// emailShape is local@domain.tld with no whitespace and a single '@'.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s has the local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailShape.MatchString(s)
}

// AuthError is a sign-in failure whose message is safe to show.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// Sign-in failures. Unknown email and wrong password share one value so
// the response does not reveal which accounts exist.
var (
	ErrInvalidCredentials = &AuthError{Reason: "invalid email or password"}
	ErrAccountLocked      = &AuthError{Reason: "account is locked due to too many failed attempts"}
)

// IsAuthError reports whether err is a sign-in failure.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
