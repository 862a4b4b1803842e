package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/authz"
	"github.com/wecare-dev/wecare/internal/httpx"
	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/token"
	"github.com/wecare-dev/wecare/internal/user"
)

// Resolver and Gate are the two decision points Protect composes. They match
// *session.Resolver and *authz.Gate; tests substitute fakes.
type Resolver interface {
	Resolve(ctx context.Context, req *http.Request, src session.Source) (*session.Session, error)
}

type Gate interface {
	Authorize(ctx context.Context, sess *session.Session, allowed []user.Role) authz.Decision
}

type Guarded struct {
	resolver Resolver
	gate     Gate
	logger   *zap.Logger
}

func NewGuarded(resolver Resolver, gate Gate, logger *zap.Logger) *Guarded {
	return &Guarded{resolver: resolver, gate: gate, logger: logger}
}

// Protect authenticates, then authorizes, then invokes the wrapped handler.
// Order is the contract: the handler never runs on a 401 or 403 path. Panics
// inside the resolver or gate become a 401; panics inside the handler are
// not this middleware's fault domain and propagate untouched.
func (g *Guarded) Protect(src session.Source, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, dec, handled := g.decide(w, r, src, roles)
			if handled {
				return
			}
			sess.Role = dec.EffectiveRole
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// decide runs resolve + authorize and writes the short-circuit response
// itself when access is not allowed. handled reports whether it did.
func (g *Guarded) decide(w http.ResponseWriter, r *http.Request, src session.Source, roles []user.Role) (sess *session.Session, dec authz.Decision, handled bool) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("auth pipeline panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
			writeUnauthorized(w)
			sess, handled = nil, true
		}
	}()

	sess, err := g.resolver.Resolve(r.Context(), r, src)
	if err != nil {
		g.writeResolveError(w, r, err)
		return nil, authz.Decision{}, true
	}

	dec = g.gate.Authorize(r.Context(), sess, roles)
	if !dec.Allowed {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code:    httpx.ErrForbidden,
			Message: "forbidden",
		})
		return nil, authz.Decision{}, true
	}
	return sess, dec, false
}

func (g *Guarded) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthenticated),
		errors.Is(err, session.ErrUserNotFound),
		errors.Is(err, token.ErrMalformed),
		errors.Is(err, token.ErrInvalidSignature),
		errors.Is(err, token.ErrExpired):
		writeUnauthorized(w)
	default:
		// user store outage, not a credential problem
		g.logger.Error("session resolution failed", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
		Code:    httpx.ErrUnauthorized,
		Message: "unauthenticated",
	})
}
