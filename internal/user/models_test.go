package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"community", "driver", "health_officer", "executive", "officer", "admin", "developer"} {
		role, err := ParseRole(s)
		require.NoError(t, err)
		require.Equal(t, Role(s), role)
	}

	for _, s := range []string{"", "ADMIN", "Admin", "superuser", "health officer", "wizard"} {
		_, err := ParseRole(s)
		require.Error(t, err, "input %q", s)
	}
}

func TestProfile_ExcludesPasswordHash(t *testing.T) {
	t.Parallel()

	u := &User{
		PublicID:  "u-1",
		CitizenID: "1234567890123",
		Name:      "Ana",
		Password:  "$2a$10$secret-hash",
		Role:      RoleOfficer,
	}

	b, err := json.Marshal(u.Profile())
	require.NoError(t, err)
	require.NotContains(t, string(b), "secret-hash")
	require.NotContains(t, string(b), "password")

	// the full User type hides it too
	b, err = json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(b), "secret-hash")
}
