// Package services defines the business logic for users and their exercise
// logs. This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrUserNotFound indicates that no user exists for the given id.
	ErrUserNotFound = errors.New("unknown user")

	// ErrInvalidUsername is returned when a username is blank after
	// normalization or longer than the configured maximum.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidDuration is returned when a duration is not a string of
	// decimal digits or does not fit an int.
	ErrInvalidDuration = errors.New("invalid duration")
)
