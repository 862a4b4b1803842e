package session

import (
	"errors"
	"time"

	"github.com/wecare-dev/wecare/internal/user"
)

var (
	ErrUnauthenticated = errors.New("no credential presented")
	// ErrUserNotFound means the token verified but the user behind it is
	// gone or deactivated. Externally indistinguishable from unauthenticated.
	ErrUserNotFound = errors.New("user behind token not found")
)

// Session is the resolved identity for one request. Role and profile fields
// come from the live user row, not the token payload.
type Session struct {
	UserID    string
	CitizenID string
	Name      string
	Role      user.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
