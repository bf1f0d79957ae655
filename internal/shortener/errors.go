package shortener

import "errors"

var (
	ErrNotFound      = errors.New("short link not found")
	ErrExpired       = errors.New("short link expired")
	ErrInvalidURL    = errors.New("invalid or missing url")
	ErrInvalidExpiry = errors.New("expiry must be a positive number of hours")

	// ErrCodeCollision is returned when a different URL already owns the generated code.
	ErrCodeCollision = errors.New("short code already used by a different url")
)
