package ride

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

type CreateRideDTO struct {
	PatientName   string
	PickupAddress string
	Destination   string
	DriverID      string
	CreatedBy     string
}

type Repo interface {
	Create(ctx context.Context, dto CreateRideDTO) (*Ride, error)
	GetByID(ctx context.Context, publicID string) (*Ride, error)
	ListAll(ctx context.Context) ([]Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]Ride, error)
	UpdateStatus(ctx context.Context, publicID string, from, to Status) error
}

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

const (
	insertRideQuery = `
						INSERT INTO rides (patient_name, pickup_address, destination, driver_id, status, created_by)
						VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
						RETURNING id, public_id, created_at, updated_at
						`
	selectRideColumns = `id, public_id, patient_name, pickup_address, destination, driver_id, status, created_by, created_at, updated_at`

	getRideByIDQuery = `
						SELECT ` + selectRideColumns + `
						FROM rides WHERE public_id = $1
						`
	listAllRidesQuery = `
						SELECT ` + selectRideColumns + `
						FROM rides ORDER BY created_at DESC
						`
	listRidesByDriverQuery = `
						SELECT ` + selectRideColumns + `
						FROM rides WHERE driver_id = $1 ORDER BY created_at DESC
						`
	updateRideStatusQuery = `
						UPDATE rides SET status = $3, updated_at = now()
						WHERE public_id = $1 AND status = $2
						`
)

func (r *repo) Create(ctx context.Context, dto CreateRideDTO) (*Ride, error) {
	status := StatusRequested
	if dto.DriverID != "" {
		status = StatusAssigned
	}
	ride := &Ride{
		PatientName:   dto.PatientName,
		PickupAddress: dto.PickupAddress,
		Destination:   dto.Destination,
		Status:        status,
		CreatedBy:     dto.CreatedBy,
	}
	if dto.DriverID != "" {
		ride.DriverID = &dto.DriverID
	}
	row := r.db.QueryRowContext(ctx, insertRideQuery,
		ride.PatientName, ride.PickupAddress, ride.Destination, dto.DriverID, ride.Status, ride.CreatedBy)
	if err := row.Scan(&ride.ID, &ride.PublicID, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
		r.logger.Error("failed to insert ride", zap.Error(err))
		return nil, err
	}
	return ride, nil
}

func (r *repo) GetByID(ctx context.Context, publicID string) (*Ride, error) {
	var ride Ride
	row := r.db.QueryRowContext(ctx, getRideByIDQuery, publicID)
	if err := row.Scan(&ride.ID, &ride.PublicID, &ride.PatientName, &ride.PickupAddress, &ride.Destination,
		&ride.DriverID, &ride.Status, &ride.CreatedBy, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get ride", zap.Error(err))
		return nil, err
	}
	return &ride, nil
}

func (r *repo) ListAll(ctx context.Context) ([]Ride, error) {
	return r.list(ctx, listAllRidesQuery)
}

func (r *repo) ListByDriver(ctx context.Context, driverID string) ([]Ride, error) {
	return r.list(ctx, listRidesByDriverQuery, driverID)
}

func (r *repo) list(ctx context.Context, query string, args ...any) ([]Ride, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list rides", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Ride
	for rows.Next() {
		var ride Ride
		if err := rows.Scan(&ride.ID, &ride.PublicID, &ride.PatientName, &ride.PickupAddress, &ride.Destination,
			&ride.DriverID, &ride.Status, &ride.CreatedBy, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ride)
	}
	return out, rows.Err()
}

func (r *repo) UpdateStatus(ctx context.Context, publicID string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, updateRideStatusQuery, publicID, from, to)
	if err != nil {
		r.logger.Error("failed to update ride status", zap.String("public_id", publicID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
