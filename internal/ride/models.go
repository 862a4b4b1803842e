package ride

import (
	"errors"
	"time"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked_up"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRequested, StatusAssigned, StatusPickedUp, StatusCompleted:
		return Status(s), nil
	}
	return "", errors.New("unknown status " + s)
}

func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusRequested:
		return next == StatusAssigned
	case StatusAssigned:
		return next == StatusPickedUp
	case StatusPickedUp:
		return next == StatusCompleted
	}
	return false
}

type Ride struct {
	ID            int64     `json:"-" db:"id"`
	PublicID      string    `json:"id" db:"public_id"`
	PatientName   string    `json:"patient_name" db:"patient_name"`
	PickupAddress string    `json:"pickup_address" db:"pickup_address"`
	Destination   string    `json:"destination" db:"destination"`
	DriverID      *string   `json:"driver_id,omitempty" db:"driver_id"`
	Status        Status    `json:"status" db:"status"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AssignedTo reports whether the ride is assigned to the given driver.
func (r *Ride) AssignedTo(driverID string) bool {
	return r.DriverID != nil && *r.DriverID == driverID
}

var ErrNotFound = errors.New("ride not found")
