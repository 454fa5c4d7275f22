package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyPageURL is returned when a page is constructed without a URL.
	ErrEmptyPageURL = errors.New("URL must be defined")

	// ErrInvalidTaskStatus is returned when a task status is not one of the
	// known values.
	ErrInvalidTaskStatus = errors.New("invalid task status")
)
