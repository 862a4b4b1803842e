package token

import "errors"

// Verification failures form a closed set: every bad token maps to exactly
// one of these, and none of them comes with partial claims attached.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
)
