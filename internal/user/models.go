package user

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleCommunity     Role = "community"
	RoleDriver        Role = "driver"
	RoleHealthOfficer Role = "health_officer"
	RoleExecutive     Role = "executive"
	RoleOfficer       Role = "officer"
	RoleAdmin         Role = "admin"
	RoleDeveloper     Role = "developer"
)

// ParseRole rejects anything outside the closed set. Role strings arrive
// from tokens and database rows; neither is trusted to stay well-formed.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCommunity, RoleDriver, RoleHealthOfficer, RoleExecutive,
		RoleOfficer, RoleAdmin, RoleDeveloper:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID        int64     `json:"-" db:"id"`
	PublicID  string    `json:"id" db:"public_id"`
	CitizenID string    `json:"citizen_id" db:"citizen_id"`
	Name      string    `json:"name" db:"name"`
	Password  string    `json:"-" db:"password"`
	Role      Role      `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the safe subset returned to clients. The password hash never
// leaves this package through any other type either.
type Profile struct {
	ID        string `json:"id"`
	CitizenID string `json:"citizen_id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.PublicID,
		CitizenID: u.CitizenID,
		Name:      u.Name,
		Role:      u.Role,
	}
}
