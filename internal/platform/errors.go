package platform

import (
	"errors"
	"fmt"
)

// Well-known platform error codes. The remote API reports these inside the
// error envelope; callers react differently to each (re-auth, abort, retry).
const (
	CodeCredentialExpired = 190
	CodePermissionDenied  = 200
	CodeObjectNotFound    = 100
	CodeRateLimited       = 17
)

// Error is a structured error returned by the remote advertising platform.
// UserMessage, when present, is safe to surface to end users.
type Error struct {
	Code        int    `json:"code"`
	Subcode     int    `json:"error_subcode,omitempty"`
	Type        string `json:"type,omitempty"`
	Message     string `json:"message"`
	UserMessage string `json:"error_user_msg,omitempty"`
}

func (e *Error) Error() string {
	if e.Subcode != 0 {
		return fmt.Sprintf("platform error %d (subcode %d): %s", e.Code, e.Subcode, e.Message)
	}
	return fmt.Sprintf("platform error %d: %s", e.Code, e.Message)
}

// UserFacing returns the platform's user-facing message, falling back to the
// technical message.
func (e *Error) UserFacing() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// IsNotFound reports whether err is a platform error for a missing or
// inaccessible remote object.
func IsNotFound(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == CodeObjectNotFound
}

// IsAuthError reports whether err indicates expired or rejected credentials.
func IsAuthError(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == CodeCredentialExpired || pe.Code == CodePermissionDenied
}

// UserMessage extracts the platform's user-facing message from err, or
// returns fallback when err is not a platform error.
func UserMessage(err error, fallback string) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.UserFacing()
	}
	return fallback
}
