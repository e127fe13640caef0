package services

import "errors"

// Sentinel errors translated to HTTP status codes at the handler boundary.
// External-service failures (scoring, email) never appear here: they are
// logged where they happen and the owning field stays unset.
var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrValidation maps to 400.
	ErrValidation = errors.New("validation failed")
	// ErrAuth maps to 401. The message is identical for a missing email and a
	// wrong password so the two cases cannot be told apart.
	ErrAuth = errors.New("invalid email or password")
	// ErrConflict maps to 409.
	ErrConflict = errors.New("already exists")
)
