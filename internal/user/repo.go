package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserDTO struct {
	CitizenID string
	Name      string
	Password  string
	Role      Role
}

type Repo interface {
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	GetByID(ctx context.Context, publicID string) (*User, error)
	GetByCitizenID(ctx context.Context, citizenID string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, publicID string, role Role) error
	Deactivate(ctx context.Context, publicID string) error
}

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

const (
	insertUserQuery = `
						INSERT INTO users (citizen_id, name, password, role, is_active)
						VALUES ($1, $2, $3, $4, TRUE)
						RETURNING id, public_id, created_at, updated_at
						`
	selectUserColumns = `id, public_id, citizen_id, name, password, role, is_active, created_at, updated_at`

	getUserByIDQuery = `
						SELECT ` + selectUserColumns + `
						FROM users WHERE public_id = $1 AND is_active
						`
	getUserByCitizenIDQuery = `
						SELECT ` + selectUserColumns + `
						FROM users WHERE citizen_id = $1 AND is_active
						`
	listUsersQuery = `
						SELECT ` + selectUserColumns + `
						FROM users ORDER BY created_at DESC
						`
	updateUserRoleQuery = `
						UPDATE users SET role = $2, updated_at = now()
						WHERE public_id = $1 AND is_active
						`
	deactivateUserQuery = `
						UPDATE users SET is_active = FALSE, updated_at = now()
						WHERE public_id = $1 AND is_active
						`
)

func (r *repo) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		r.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		CitizenID: strings.TrimSpace(dto.CitizenID),
		Name:      strings.TrimSpace(dto.Name),
		Password:  string(hashed),
		Role:      dto.Role,
		IsActive:  true,
	}
	row := r.db.QueryRowContext(ctx, insertUserQuery, u.CitizenID, u.Name, u.Password, u.Role)
	if err := row.Scan(&u.ID, &u.PublicID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Debug("duplicate citizen id", zap.String("citizen_id", dto.CitizenID))
			return nil, ErrDuplicateCitizenID
		}
		r.logger.Error("failed to insert user", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repo) GetByID(ctx context.Context, publicID string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, getUserByIDQuery, publicID))
}

func (r *repo) GetByCitizenID(ctx context.Context, citizenID string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, getUserByCitizenIDQuery, strings.TrimSpace(citizenID)))
}

func (r *repo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.PublicID, &u.CitizenID, &u.Name, &u.Password, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if u.Role, err = ParseRole(role); err != nil {
			r.logger.Error("user row carries unknown role", zap.String("public_id", u.PublicID), zap.Error(err))
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) UpdateRole(ctx context.Context, publicID string, role Role) error {
	res, err := r.db.ExecContext(ctx, updateUserRoleQuery, publicID, role)
	if err != nil {
		r.logger.Error("failed to update role", zap.String("public_id", publicID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Deactivate(ctx context.Context, publicID string) error {
	res, err := r.db.ExecContext(ctx, deactivateUserQuery, publicID)
	if err != nil {
		r.logger.Error("failed to deactivate user", zap.String("public_id", publicID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) scanOne(row *sql.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.PublicID, &u.CitizenID, &u.Name, &u.Password, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to scan user", zap.Error(err))
		return nil, err
	}
	var err error
	if u.Role, err = ParseRole(role); err != nil {
		r.logger.Error("user row carries unknown role", zap.String("public_id", u.PublicID), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

// CheckPassword compares a candidate against the stored bcrypt hash.
func CheckPassword(u *User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}
