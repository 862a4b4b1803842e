package authz

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
)

type Grant struct {
	UserID    string    `json:"user_id"`
	GrantedBy string    `json:"granted_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrGrantNotFound = errors.New("break-glass grant not found")

// GrantRepo persists break-glass grants in Postgres. Revocation keeps the
// row for the audit trail instead of deleting it.
type GrantRepo interface {
	GrantStore
	Create(ctx context.Context, g Grant) error
	Revoke(ctx context.Context, userID, revokedBy string) error
	List(ctx context.Context) ([]Grant, error)
}

type grantRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewGrantRepo(db *sql.DB, logger *zap.Logger) GrantRepo {
	return &grantRepo{db: db, logger: logger}
}

const (
	hasActiveGrantQuery = `
						SELECT EXISTS (
							SELECT 1 FROM break_glass_grants
							WHERE user_id = $1 AND revoked_at IS NULL
						)
						`
	insertGrantQuery = `
						INSERT INTO break_glass_grants (user_id, granted_by, reason)
						VALUES ($1, $2, $3)
						`
	revokeGrantQuery = `
						UPDATE break_glass_grants
						SET revoked_at = now(), revoked_by = $2
						WHERE user_id = $1 AND revoked_at IS NULL
						`
	listGrantsQuery = `
						SELECT user_id, granted_by, reason, created_at
						FROM break_glass_grants
						WHERE revoked_at IS NULL
						ORDER BY created_at DESC
						`
)

func (r *grantRepo) HasActiveGrant(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, hasActiveGrantQuery, userID).Scan(&exists); err != nil {
		r.logger.Error("failed to check break-glass grant", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *grantRepo) Create(ctx context.Context, g Grant) error {
	_, err := r.db.ExecContext(ctx, insertGrantQuery, g.UserID, g.GrantedBy, g.Reason)
	if err != nil {
		r.logger.Error("failed to create break-glass grant", zap.Error(err))
		return err
	}
	r.logger.Warn("break-glass grant created",
		zap.String("user_id", g.UserID),
		zap.String("granted_by", g.GrantedBy),
		zap.String("reason", g.Reason),
	)
	return nil
}

func (r *grantRepo) Revoke(ctx context.Context, userID, revokedBy string) error {
	res, err := r.db.ExecContext(ctx, revokeGrantQuery, userID, revokedBy)
	if err != nil {
		r.logger.Error("failed to revoke break-glass grant", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGrantNotFound
	}
	r.logger.Warn("break-glass grant revoked",
		zap.String("user_id", userID),
		zap.String("revoked_by", revokedBy),
	)
	return nil
}

func (r *grantRepo) List(ctx context.Context) ([]Grant, error) {
	rows, err := r.db.QueryContext(ctx, listGrantsQuery)
	if err != nil {
		r.logger.Error("failed to list break-glass grants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.UserID, &g.GrantedBy, &g.Reason, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
