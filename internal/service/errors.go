package service

import "errors"

// Operation errors, recovered at the API boundary and mapped to a
// caller-visible status there. None propagate as unhandled faults.
var (
	// Validation
	ErrMissingFields    = errors.New("username and password required")
	ErrInputTooLong     = errors.New("input too long")
	ErrInvalidContent   = errors.New("content must be 1-500 characters")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrPasswordTooShort = errors.New("new password must be at least 6 characters")

	// Conflict
	ErrUsernameTaken = errors.New("username taken")

	// Auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("password is incorrect")

	// Not found
	ErrNotFound          = errors.New("not found")
	ErrRecipientNotFound = errors.New("recipient not found")
)
