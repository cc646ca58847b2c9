// Package apperr defines the domain error taxonomy shared across services.
package apperr

import "errors"

var (
	// ErrValidation covers malformed or missing input, including references
	// to categories the caller does not own.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both nonexistent ids and ids owned by another
	// user; the two must be indistinguishable to the caller.
	ErrNotFound = errors.New("not found")

	// ErrBadCredentials is returned by login on email/password mismatch.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers expired, malformed, rotated-out, and
	// blacklisted refresh tokens, and invalid bearer tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmailTaken is returned by registration on a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
)
