package request

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusTriaged  Status = "triaged"
	StatusResolved Status = "resolved"
)

var ErrInvalidTransition = errors.New("invalid status transition")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusTriaged, StatusResolved:
		return Status(s), nil
	}
	return "", errors.New("unknown status " + s)
}

// CanTransitionTo enforces the one-way triage flow.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusOpen:
		return next == StatusTriaged
	case StatusTriaged:
		return next == StatusResolved
	}
	return false
}

type HelpRequest struct {
	ID          int64     `json:"-" db:"id"`
	PublicID    string    `json:"id" db:"public_id"`
	RequesterID string    `json:"requester_id" db:"requester_id"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

var ErrNotFound = errors.New("help request not found")
