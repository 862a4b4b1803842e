package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/authz"
	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/token"
	"github.com/wecare-dev/wecare/internal/user"
)

type stubResolver struct {
	sess  *session.Session
	err   error
	panic bool
}

func (s *stubResolver) Resolve(context.Context, *http.Request, session.Source) (*session.Session, error) {
	if s.panic {
		panic("resolver blew up")
	}
	return s.sess, s.err
}

type passthroughGate struct{}

func (passthroughGate) Authorize(_ context.Context, sess *session.Session, allowed []user.Role) authz.Decision {
	for _, role := range allowed {
		if sess.Role == role {
			return authz.Decision{Allowed: true, EffectiveRole: sess.Role}
		}
	}
	return authz.Decision{}
}

func protectedRequest(t *testing.T, g *Guarded, roles ...user.Role) (*httptest.ResponseRecorder, *bool) {
	t.Helper()
	invoked := false
	h := g.Protect(session.SourceCookie, roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	return rec, &invoked
}

func TestProtect_UnauthenticatedNeverInvokesHandler(t *testing.T) {
	t.Parallel()

	g := NewGuarded(&stubResolver{err: session.ErrUnauthenticated}, passthroughGate{}, zap.NewNop())
	rec, invoked := protectedRequest(t, g, user.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *invoked)
}

func TestProtect_ForbiddenNeverInvokesHandler(t *testing.T) {
	t.Parallel()

	sess := &session.Session{UserID: "u-1", Role: user.RoleCommunity}
	g := NewGuarded(&stubResolver{sess: sess}, passthroughGate{}, zap.NewNop())
	rec, invoked := protectedRequest(t, g, user.RoleAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, *invoked)
	// opaque denial: no role names in the body
	require.NotContains(t, rec.Body.String(), "admin")
	require.NotContains(t, rec.Body.String(), "community")
}

func TestProtect_AllowedInvokesHandlerWithSession(t *testing.T) {
	t.Parallel()

	sess := &session.Session{UserID: "u-1", Role: user.RoleAdmin}
	g := NewGuarded(&stubResolver{sess: sess}, passthroughGate{}, zap.NewNop())

	var got *session.Session
	h := g.Protect(session.SourceCookie, user.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, "u-1", got.UserID)
}

func TestProtect_TokenFailuresAre401(t *testing.T) {
	t.Parallel()

	for _, err := range []error{token.ErrMalformed, token.ErrInvalidSignature, token.ErrExpired, session.ErrUserNotFound} {
		g := NewGuarded(&stubResolver{err: err}, passthroughGate{}, zap.NewNop())
		rec, invoked := protectedRequest(t, g, user.RoleAdmin)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "error %v", err)
		require.False(t, *invoked)
	}
}

func TestProtect_ResolverPanicBecomes401(t *testing.T) {
	t.Parallel()

	g := NewGuarded(&stubResolver{panic: true}, passthroughGate{}, zap.NewNop())
	rec, invoked := protectedRequest(t, g, user.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *invoked)
}

func TestProtect_HandlerPanicPropagates(t *testing.T) {
	t.Parallel()

	sess := &session.Session{UserID: "u-1", Role: user.RoleAdmin}
	g := NewGuarded(&stubResolver{sess: sess}, passthroughGate{}, zap.NewNop())
	h := g.Protect(session.SourceCookie, user.RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("business logic failure")
	}))

	require.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestProtect_StoreOutageIs500(t *testing.T) {
	t.Parallel()

	g := NewGuarded(&stubResolver{err: context.DeadlineExceeded}, passthroughGate{}, zap.NewNop())
	rec, invoked := protectedRequest(t, g, user.RoleAdmin)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, *invoked)
}
