package patient

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type CreatePatientDTO struct {
	CitizenID    string
	Name         string
	Address      string
	Notes        string
	RegisteredBy string
}

type CreateAppointmentDTO struct {
	PatientID   string
	ScheduledAt time.Time
	Purpose     string
	CreatedBy   string
}

type Repo interface {
	Create(ctx context.Context, dto CreatePatientDTO) (*Patient, error)
	GetByID(ctx context.Context, publicID string) (*Patient, error)
	List(ctx context.Context) ([]Patient, error)
	CreateAppointment(ctx context.Context, dto CreateAppointmentDTO) (*Appointment, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
}

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

const (
	insertPatientQuery = `
						INSERT INTO patients (citizen_id, name, address, notes, registered_by)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id, public_id, created_at, updated_at
						`
	selectPatientColumns = `id, public_id, citizen_id, name, address, notes, registered_by, created_at, updated_at`

	getPatientByIDQuery = `
						SELECT ` + selectPatientColumns + `
						FROM patients WHERE public_id = $1
						`
	listPatientsQuery = `
						SELECT ` + selectPatientColumns + `
						FROM patients ORDER BY created_at DESC
						`
	insertAppointmentQuery = `
						INSERT INTO appointments (patient_id, scheduled_at, purpose, created_by)
						SELECT id, $2, $3, $4 FROM patients WHERE public_id = $1
						RETURNING id, public_id, created_at
						`
	listAppointmentsQuery = `
						SELECT a.id, a.public_id, p.public_id, a.scheduled_at, a.purpose, a.created_by, a.created_at
						FROM appointments a
						JOIN patients p ON p.id = a.patient_id
						ORDER BY a.scheduled_at
						`
)

func (r *repo) Create(ctx context.Context, dto CreatePatientDTO) (*Patient, error) {
	p := &Patient{
		CitizenID:    strings.TrimSpace(dto.CitizenID),
		Name:         strings.TrimSpace(dto.Name),
		Address:      dto.Address,
		Notes:        dto.Notes,
		RegisteredBy: dto.RegisteredBy,
	}
	row := r.db.QueryRowContext(ctx, insertPatientQuery, p.CitizenID, p.Name, p.Address, p.Notes, p.RegisteredBy)
	if err := row.Scan(&p.ID, &p.PublicID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateCitizenID
		}
		r.logger.Error("failed to insert patient", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repo) GetByID(ctx context.Context, publicID string) (*Patient, error) {
	var p Patient
	row := r.db.QueryRowContext(ctx, getPatientByIDQuery, publicID)
	if err := row.Scan(&p.ID, &p.PublicID, &p.CitizenID, &p.Name, &p.Address, &p.Notes, &p.RegisteredBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get patient", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context) ([]Patient, error) {
	rows, err := r.db.QueryContext(ctx, listPatientsQuery)
	if err != nil {
		r.logger.Error("failed to list patients", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.PublicID, &p.CitizenID, &p.Name, &p.Address, &p.Notes, &p.RegisteredBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) CreateAppointment(ctx context.Context, dto CreateAppointmentDTO) (*Appointment, error) {
	a := &Appointment{
		PatientID:   dto.PatientID,
		ScheduledAt: dto.ScheduledAt,
		Purpose:     dto.Purpose,
		CreatedBy:   dto.CreatedBy,
	}
	row := r.db.QueryRowContext(ctx, insertAppointmentQuery, dto.PatientID, dto.ScheduledAt, dto.Purpose, dto.CreatedBy)
	if err := row.Scan(&a.ID, &a.PublicID, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to insert appointment", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (r *repo) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, listAppointmentsQuery)
	if err != nil {
		r.logger.Error("failed to list appointments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PublicID, &a.PatientID, &a.ScheduledAt, &a.Purpose, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
