package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAccountNotFound is returned when an operation references an account
// with no local record. Accounts are provisioned out of band; the bridge
// never fabricates one.
var ErrAccountNotFound = errors.New("account not found locally")

// ValidationError reports missing or inconsistent fields detected before any
// remote call. It never triggers compensation because nothing remote has
// happened yet.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// IsValidation reports whether err is a pre-flight validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CompensationError describes a failed unwind step. It is logged and
// recorded but never propagated; the remaining unwind steps still run.
type CompensationError struct {
	Kind       string
	ExternalID string
	Err        error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation delete of %s %s failed: %v", e.Kind, e.ExternalID, e.Err)
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}
