package guard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wecare-dev/wecare/internal/user"
)

func TestGuard_LoadingUntilResolved(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "/admin/users")
	require.Equal(t, ActionRenderLoading, g.Current().Kind)
	// repeated renders during Init never expose children
	require.Equal(t, ActionRenderLoading, g.Current().Kind)
}

func TestGuard_UnauthenticatedRedirectsToLoginWithCallback(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "/admin/users?page=2")
	act := g.Resolve(AuthState{Authenticated: false})
	require.Equal(t, ActionRedirect, act.Kind)

	u, err := url.Parse(act.Target)
	require.NoError(t, err)
	require.Equal(t, DefaultLoginPath, u.Path)
	require.Equal(t, "/admin/users?page=2", u.Query().Get(CallbackParam))
}

func TestGuard_WrongRoleRedirectsToDashboard(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "/admin/users")
	act := g.Resolve(AuthState{Authenticated: true, Role: user.RoleCommunity})
	require.Equal(t, ActionRedirect, act.Kind)
	require.Equal(t, DefaultDashboardPath, act.Target)
}

func TestGuard_PermittedRendersChildren(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleOfficer, user.RoleAdmin}, "/triage")
	act := g.Resolve(AuthState{Authenticated: true, Role: user.RoleOfficer})
	require.Equal(t, ActionRenderChildren, act.Kind)
	require.Equal(t, ActionRenderChildren, g.Current().Kind)
}

func TestGuard_RedirectIsOneShot(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "/admin/users")
	first := g.Resolve(AuthState{Authenticated: false})
	require.Equal(t, ActionRedirect, first.Kind)

	// a re-render or duplicate resolution must not redirect again
	require.Equal(t, ActionNone, g.Resolve(AuthState{Authenticated: false}).Kind)
	require.Equal(t, ActionNone, g.Current().Kind)
}

func TestGuard_AbortSuppressesLateRedirect(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "/admin/users")
	g.Abort()

	// the identity check resolves after the subtree unmounted
	act := g.Resolve(AuthState{Authenticated: false})
	require.Equal(t, ActionNone, act.Kind)
	require.Equal(t, StateAborted, g.State())
}

func TestGuard_AbortAfterResolveIsNoop(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "/admin/users")
	g.Resolve(AuthState{Authenticated: true, Role: user.RoleAdmin})
	g.Abort()
	require.Equal(t, StateResolved, g.State())
	require.Equal(t, ActionRenderChildren, g.Current().Kind)
}

func TestGuard_EmptyPathOmitsCallback(t *testing.T) {
	t.Parallel()

	g := New([]user.Role{user.RoleAdmin}, "")
	act := g.Resolve(AuthState{Authenticated: false})
	require.Equal(t, DefaultLoginPath, act.Target)
}
