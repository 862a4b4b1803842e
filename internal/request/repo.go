package request

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

type CreateRequestDTO struct {
	RequesterID string
	Category    string
	Description string
}

type Repo interface {
	Create(ctx context.Context, dto CreateRequestDTO) (*HelpRequest, error)
	GetByID(ctx context.Context, publicID string) (*HelpRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]HelpRequest, error)
	ListAll(ctx context.Context) ([]HelpRequest, error)
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
	insertRequestQuery = `
						INSERT INTO help_requests (requester_id, category, description, status)
						VALUES ($1, $2, $3, $4)
						RETURNING id, public_id, created_at, updated_at
						`
	selectRequestColumns = `id, public_id, requester_id, category, description, status, created_at, updated_at`

	getRequestByIDQuery = `
						SELECT ` + selectRequestColumns + `
						FROM help_requests WHERE public_id = $1
						`
	listByRequesterQuery = `
						SELECT ` + selectRequestColumns + `
						FROM help_requests WHERE requester_id = $1 ORDER BY created_at DESC
						`
	listAllRequestsQuery = `
						SELECT ` + selectRequestColumns + `
						FROM help_requests ORDER BY created_at DESC
						`
	// the WHERE status guard makes the transition check race-free: a
	// concurrent update loses and reports no rows
	updateRequestStatusQuery = `
						UPDATE help_requests SET status = $3, updated_at = now()
						WHERE public_id = $1 AND status = $2
						`
)

func (r *repo) Create(ctx context.Context, dto CreateRequestDTO) (*HelpRequest, error) {
	hr := &HelpRequest{
		RequesterID: dto.RequesterID,
		Category:    dto.Category,
		Description: dto.Description,
		Status:      StatusOpen,
	}
	row := r.db.QueryRowContext(ctx, insertRequestQuery, hr.RequesterID, hr.Category, hr.Description, hr.Status)
	if err := row.Scan(&hr.ID, &hr.PublicID, &hr.CreatedAt, &hr.UpdatedAt); err != nil {
		r.logger.Error("failed to insert help request", zap.Error(err))
		return nil, err
	}
	return hr, nil
}

func (r *repo) GetByID(ctx context.Context, publicID string) (*HelpRequest, error) {
	var hr HelpRequest
	row := r.db.QueryRowContext(ctx, getRequestByIDQuery, publicID)
	if err := row.Scan(&hr.ID, &hr.PublicID, &hr.RequesterID, &hr.Category, &hr.Description, &hr.Status, &hr.CreatedAt, &hr.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get help request", zap.Error(err))
		return nil, err
	}
	return &hr, nil
}

func (r *repo) ListByRequester(ctx context.Context, requesterID string) ([]HelpRequest, error) {
	return r.list(ctx, listByRequesterQuery, requesterID)
}

func (r *repo) ListAll(ctx context.Context) ([]HelpRequest, error) {
	return r.list(ctx, listAllRequestsQuery)
}

func (r *repo) list(ctx context.Context, query string, args ...any) ([]HelpRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list help requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []HelpRequest
	for rows.Next() {
		var hr HelpRequest
		if err := rows.Scan(&hr.ID, &hr.PublicID, &hr.RequesterID, &hr.Category, &hr.Description, &hr.Status, &hr.CreatedAt, &hr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, hr)
	}
	return out, rows.Err()
}

func (r *repo) UpdateStatus(ctx context.Context, publicID string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, updateRequestStatusQuery, publicID, from, to)
	if err != nil {
		r.logger.Error("failed to update help request status", zap.String("public_id", publicID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
