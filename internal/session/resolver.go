package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/httpx"
	"github.com/wecare-dev/wecare/internal/token"
	"github.com/wecare-dev/wecare/internal/user"
)

// Source is the single credential channel a route group accepts. Browser
// routes read the session cookie, API routes read the Authorization header;
// there is no fallback from one to the other.
type Source int

const (
	SourceCookie Source = iota
	SourceBearer
)

// UserSource is the slice of the user store the resolver needs.
type UserSource interface {
	GetByID(ctx context.Context, publicID string) (*user.User, error)
}

type Resolver struct {
	codec        *token.Codec
	users        UserSource
	cache        *userCache
	logger       *zap.Logger
	fetchTimeout time.Duration
}

const (
	defaultFetchTimeout = 5 * time.Second
	defaultCacheTTL     = 30 * time.Second
)

func NewResolver(codec *token.Codec, users UserSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		codec:        codec,
		users:        users,
		cache:        newUserCache(defaultCacheTTL),
		logger:       logger,
		fetchTimeout: defaultFetchTimeout,
	}
}

// Resolve bridges a raw request to a verified Session. The user is re-read
// from the store so a role change or deactivation applies to in-flight
// tokens, not just freshly issued ones.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request, src Source) (*Session, error) {
	raw, ok := extractToken(req, src)
	if !ok {
		return nil, ErrUnauthenticated
	}

	claims, err := r.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	u, err := r.fetchUser(ctx, claims.Sub)
	if err != nil {
		return nil, err
	}

	return &Session{
		UserID:    u.PublicID,
		CitizenID: u.CitizenID,
		Name:      u.Name,
		Role:      u.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Invalidate drops a user from the read cache. Admin writes that change
// authorization call this so the next request sees the new state.
func (r *Resolver) Invalidate(publicID string) {
	r.cache.invalidate(publicID)
}

func (r *Resolver) fetchUser(ctx context.Context, publicID string) (*user.User, error) {
	if u, ok := r.cache.get(publicID); ok {
		return u, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	u, err := r.users.GetByID(ctx, publicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("user store lookup failed", zap.String("user_id", publicID), zap.Error(err))
		return nil, err
	}
	r.cache.put(u)
	return u, nil
}

func extractToken(req *http.Request, src Source) (string, bool) {
	switch src {
	case SourceBearer:
		return bearerToken(req.Header.Get("Authorization"))
	default:
		c, err := req.Cookie(httpx.SessionCookieName)
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}
	return tok, true
}
