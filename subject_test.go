package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserCan tests subject-level checks as an OR across roles
func TestUserCan(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	t.Run("single role", func(t *testing.T) {
		assert.True(t, authz.UserCan(Roles{"ADMIN"}, "Products", "DELETE"))
		assert.False(t, authz.UserCan(Roles{"CLIENT"}, "Products", "DELETE"))
	})

	t.Run("union across roles", func(t *testing.T) {
		subject := Roles{"EDITOR", "CLIENT"}
		// From EDITOR.
		assert.True(t, authz.UserCan(subject, "Articles", "CREATE"))
		// From CLIENT.
		assert.True(t, authz.UserCan(subject, "Bookings", "CREATE"))
		// From neither.
		assert.False(t, authz.UserCan(subject, "Products", "DELETE"))
	})

	t.Run("user record", func(t *testing.T) {
		user := User{ID: "u-42", Roles: []string{"CLIENT"}}
		assert.True(t, authz.UserCan(user, "Products", "VIEW"))
		assert.False(t, authz.UserCan(user, "News", "UPDATE"))
	})

	t.Run("unknown roles in the list are skipped", func(t *testing.T) {
		assert.True(t, authz.UserCan(Roles{"GHOST", "ADMIN"}, "Products", "DELETE"))
		assert.False(t, authz.UserCan(Roles{"GHOST"}, "Products", "DELETE"))
	})
}

// TestUserCanFailClosed tests that the subject boundary never propagates
// errors
func TestUserCanFailClosed(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	assert.False(t, authz.UserCan(nil, "Products", "READ"))
	assert.False(t, authz.UserCan(Roles{"ADMIN"}, "", "READ"))
	assert.False(t, authz.UserCan(Roles{"ADMIN"}, "Products", "${perm}"))
	assert.False(t, authz.UserCan(Roles{"${role}"}, "Products", "READ"))
}

// TestUserCanDefaultRole tests fallback for subjects without roles
func TestUserCanDefaultRole(t *testing.T) {
	t.Run("no default role configured", func(t *testing.T) {
		authz, err := New(testConfig())
		require.NoError(t, err)

		assert.False(t, authz.UserCan(Roles{}, "Products", "READ"))
		assert.False(t, authz.UserCan(User{ID: "anon"}, "Products", "READ"))
	})

	t.Run("default role applies", func(t *testing.T) {
		cfg := testConfig()
		cfg.DefaultRole = "CLIENT"
		authz, err := New(cfg)
		require.NoError(t, err)

		assert.True(t, authz.UserCan(Roles{}, "Products", "READ"))
		assert.False(t, authz.UserCan(Roles{}, "Products", "DELETE"))
	})

	t.Run("explicit roles bypass the default", func(t *testing.T) {
		cfg := testConfig()
		cfg.DefaultRole = "ADMIN"
		authz, err := New(cfg)
		require.NoError(t, err)

		assert.False(t, authz.UserCan(Roles{"CLIENT"}, "Products", "DELETE"))
	})

	// Strict mode must not turn an empty subject into an error either.
	t.Run("strict mode stays fail-closed", func(t *testing.T) {
		authz, err := New(testConfig(), WithStrict())
		require.NoError(t, err)

		assert.False(t, authz.UserCan(Roles{"GHOST"}, "Products", "READ"))
	})
}
