package auth

import "errors"

// ErrInvalidCredentials covers both an unknown citizen id and a wrong
// password. Callers must not be able to tell which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")
