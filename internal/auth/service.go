package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/token"
	"github.com/wecare-dev/wecare/internal/user"
)

// CredentialStore is the slice of the user store login needs.
type CredentialStore interface {
	GetByCitizenID(ctx context.Context, citizenID string) (*user.User, error)
}

type LoginResult struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	Login(ctx context.Context, citizenID, password string) (*LoginResult, error)
}

type service struct {
	users  CredentialStore
	codec  *token.Codec
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(users CredentialStore, codec *token.Codec, ttl time.Duration, logger *zap.Logger) Service {
	return &service{users: users, codec: codec, ttl: ttl, logger: logger}
}

func (s *service) Login(ctx context.Context, citizenID, password string) (*LoginResult, error) {
	u, err := s.users.GetByCitizenID(ctx, citizenID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("credential lookup failed", zap.Error(err))
		return nil, err
	}

	if !user.CheckPassword(u, password) {
		return nil, ErrInvalidCredentials
	}

	raw, expiresAt, err := s.codec.Issue(u.PublicID, u.Role, s.ttl)
	if err != nil {
		s.logger.Error("failed to issue session token", zap.String("user_id", u.PublicID), zap.Error(err))
		return nil, err
	}

	return &LoginResult{User: u, Token: raw, ExpiresAt: expiresAt}, nil
}
