// Package handlers defines HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable; clients branch on
// them rather than on messages.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeUnknownUser     = "unknown_user"
	ErrCodeInvalidUsername = "invalid_username"
	ErrCodeInvalidDuration = "invalid_duration"
)

// User-facing messages for the domain codes.
const (
	MsgUnknownUser     = "Unknown user"
	MsgInvalidUsername = "Invalid username"
	MsgInvalidDuration = "Invalid duration"
)
