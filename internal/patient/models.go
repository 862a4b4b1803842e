package patient

import (
	"errors"
	"time"
)

type Patient struct {
	ID           int64     `json:"-" db:"id"`
	PublicID     string    `json:"id" db:"public_id"`
	CitizenID    string    `json:"citizen_id" db:"citizen_id"`
	Name         string    `json:"name" db:"name"`
	Address      string    `json:"address" db:"address"`
	Notes        string    `json:"notes,omitempty" db:"notes"`
	RegisteredBy string    `json:"registered_by" db:"registered_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Appointment struct {
	ID          int64     `json:"-" db:"id"`
	PublicID    string    `json:"id" db:"public_id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Purpose     string    `json:"purpose" db:"purpose"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

var (
	ErrNotFound           = errors.New("patient not found")
	ErrDuplicateCitizenID = errors.New("patient citizen id already registered")
)
