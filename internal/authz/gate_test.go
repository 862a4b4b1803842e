package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/user"
)

type fakeGrants struct {
	granted map[string]bool
	err     error
}

func (f *fakeGrants) HasActiveGrant(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.granted[userID], nil
}

func TestAuthorize_AllowIffMember(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeGrants{}, zap.NewNop())
	allowed := []user.Role{user.RoleOfficer, user.RoleAdmin}

	for _, tc := range []struct {
		role user.Role
		want bool
	}{
		{user.RoleOfficer, true},
		{user.RoleAdmin, true},
		{user.RoleCommunity, false},
		{user.RoleDriver, false},
		{user.RoleHealthOfficer, false},
		{user.RoleExecutive, false},
		{user.RoleDeveloper, false},
	} {
		dec := g.Authorize(context.Background(), &session.Session{UserID: "u-1", Role: tc.role}, allowed)
		require.Equal(t, tc.want, dec.Allowed, "role %s", tc.role)
		if dec.Allowed {
			require.Equal(t, tc.role, dec.EffectiveRole)
			require.False(t, dec.ViaBreakGlass)
		}
	}
}

func TestAuthorize_BreakGlassAlwaysAllows(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	g := NewGate(&fakeGrants{granted: map[string]bool{"u-super": true}}, zap.New(core))

	sess := &session.Session{UserID: "u-super", Role: user.RoleCommunity}
	dec := g.Authorize(context.Background(), sess, []user.Role{user.RoleAdmin})
	require.True(t, dec.Allowed)
	require.True(t, dec.ViaBreakGlass)
	require.Equal(t, user.RoleDeveloper, dec.EffectiveRole)

	// every exercised grant leaves an audit record
	entries := logs.FilterMessage("break-glass grant exercised").All()
	require.Len(t, entries, 1)
	require.Equal(t, "u-super", entries[0].ContextMap()["user_id"])
}

func TestAuthorize_BreakGlassNotConsultedWhenRoleAllows(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	g := NewGate(&fakeGrants{granted: map[string]bool{"u-super": true}}, zap.New(core))

	sess := &session.Session{UserID: "u-super", Role: user.RoleAdmin}
	dec := g.Authorize(context.Background(), sess, []user.Role{user.RoleAdmin})
	require.True(t, dec.Allowed)
	require.False(t, dec.ViaBreakGlass)
	require.Equal(t, user.RoleAdmin, dec.EffectiveRole)
	require.Empty(t, logs.All())
}

func TestAuthorize_GrantStoreFailureFailsClosed(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeGrants{err: errors.New("store down")}, zap.NewNop())
	dec := g.Authorize(context.Background(), &session.Session{UserID: "u-1", Role: user.RoleCommunity}, []user.Role{user.RoleAdmin})
	require.False(t, dec.Allowed)
}
