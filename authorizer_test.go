package rbac

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests authorizer construction
func TestNew(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		authz, err := New(testConfig())
		require.NoError(t, err)
		assert.NotNil(t, authz)
		assert.True(t, authz.GetCacheStats().Enabled)
	})

	t.Run("empty configuration", func(t *testing.T) {
		_, err := New(Config{})
		assert.True(t, IsInvalidConfig(err))
	})

	t.Run("dangling default role", func(t *testing.T) {
		cfg := testConfig()
		cfg.DefaultRole = "GHOST"
		_, err := New(cfg)
		assert.True(t, IsInvalidConfig(err))
	})

	t.Run("invalid cache sizing", func(t *testing.T) {
		_, err := New(testConfig(), WithCache(0, time.Minute))
		assert.True(t, IsInvalidConfig(err))

		_, err = New(testConfig(), WithCache(100, 0))
		assert.True(t, IsInvalidConfig(err))
	})

	t.Run("cache disabled", func(t *testing.T) {
		authz, err := New(testConfig(), WithoutCache())
		require.NoError(t, err)
		assert.Equal(t, CacheStats{Enabled: false, Size: 0}, authz.GetCacheStats())
	})
}

// TestCanDirect tests direct permission membership without a hierarchy
func TestCanDirect(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	tests := []struct {
		role       string
		resource   string
		permission string
		want       bool
	}{
		{"ADMIN", "Products", "DELETE", true},
		{"ADMIN", "Products", "CREATE", true},
		{"CLIENT", "Products", "READ", true},
		{"CLIENT", "Products", "VIEW", true},
		{"CLIENT", "Products", "DELETE", false},
		{"CLIENT", "News", "UPDATE", false},
		{"ADMIN", "Bookings", "CREATE", false},
		{"EDITOR", "Articles", "CREATE", true},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.resource+"/"+tt.permission, func(t *testing.T) {
			got, err := authz.Can(tt.role, tt.resource, tt.permission)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCanNoWildcards tests that wildcard permissions are never honored
func TestCanNoWildcards(t *testing.T) {
	cfg := Config{Roles: map[string]RoleDefinition{
		"ADMIN": {Grants: map[string][]string{"Products": {"*"}}},
	}}
	authz, err := New(cfg)
	require.NoError(t, err)

	ok, err := authz.Can("ADMIN", "Products", "DELETE")
	require.NoError(t, err)
	assert.False(t, ok, "a literal * grant must only match a literal * check")

	ok, err = authz.Can("ADMIN", "Products", "*")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestCanInherited tests transitive hierarchy inheritance
func TestCanInherited(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, authz.SetRoleHierarchy(map[string][]string{
		"EDITOR": {"ADMIN"},
	}))

	// EDITOR holds no News permissions directly, ADMIN does.
	ok, err := authz.Can("EDITOR", "News", "UPDATE")
	require.NoError(t, err)
	assert.True(t, ok)

	// Direct permissions still work alongside inherited ones.
	ok, err = authz.Can("EDITOR", "Articles", "CREATE")
	require.NoError(t, err)
	assert.True(t, ok)

	// Inheritance is not symmetric.
	ok, err = authz.Can("ADMIN", "Articles", "CREATE")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestCanTransitiveDepth tests unbounded-depth transitive inheritance
func TestCanTransitiveDepth(t *testing.T) {
	cfg := Config{Roles: map[string]RoleDefinition{
		"L0": {Grants: map[string][]string{"Vault": {"OPEN"}}},
		"L1": {}, "L2": {}, "L3": {}, "L4": {},
	}}
	authz, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, authz.SetRoleHierarchy(map[string][]string{
		"L4": {"L3"},
		"L3": {"L2"},
		"L2": {"L1"},
		"L1": {"L0"},
	}))

	ok, err := authz.Can("L4", "Vault", "OPEN")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestCanParentOrder tests that parents are consulted in declared order
// and the search short-circuits on the first grant
func TestCanParentOrder(t *testing.T) {
	cfg := Config{Roles: map[string]RoleDefinition{
		"FIRST":  {Grants: map[string][]string{"Docs": {"READ"}}},
		"SECOND": {Grants: map[string][]string{"Docs": {"READ", "WRITE"}}},
		"CHILD":  {},
	}}
	authz, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, authz.SetRoleHierarchy(map[string][]string{
		"CHILD": {"FIRST", "SECOND"},
	}))

	// Reachable through either parent.
	ok, err := authz.Can("CHILD", "Docs", "READ")
	require.NoError(t, err)
	assert.True(t, ok)

	// Only reachable through the second parent.
	ok, err = authz.Can("CHILD", "Docs", "WRITE")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestCanUnknownRole tests default-deny versus strict mode
func TestCanUnknownRole(t *testing.T) {
	t.Run("lenient mode denies and logs", func(t *testing.T) {
		var buf bytes.Buffer
		authz, err := New(testConfig(),
			WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		require.NoError(t, err)

		ok, err := authz.Can("NO_SUCH_ROLE", "Products", "READ")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, buf.String(), "unknown role")
	})

	t.Run("strict mode raises", func(t *testing.T) {
		authz, err := New(testConfig(), WithStrict())
		require.NoError(t, err)

		_, err = authz.Can("NO_SUCH_ROLE", "Products", "READ")
		require.Error(t, err)
		assert.True(t, IsUnknownRole(err))
	})

	// The asymmetry is deliberate: strict mode never applies to unknown
	// resources or permissions.
	t.Run("strict mode still denies unknown resources silently", func(t *testing.T) {
		authz, err := New(testConfig(), WithStrict())
		require.NoError(t, err)

		ok, err := authz.Can("ADMIN", "NoSuchResource", "READ")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = authz.Can("ADMIN", "Products", "NO_SUCH_PERMISSION")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// TestCanMalformedInput tests the validation boundary on queries
func TestCanMalformedInput(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	for _, bad := range []string{"", "  ", "${x}", "<script>"} {
		_, err := authz.Can(bad, "Products", "READ")
		assert.True(t, IsInvalidInput(err))

		_, err = authz.Can("ADMIN", bad, "READ")
		assert.True(t, IsInvalidInput(err))

		_, err = authz.Can("ADMIN", "Products", bad)
		assert.True(t, IsInvalidInput(err))
	}
}

// TestCanCaching tests that repeated queries are served from cache and
// stay coherent
func TestCanCaching(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	first, err := authz.Can("ADMIN", "Products", "DELETE")
	require.NoError(t, err)
	sizeAfterFirst := authz.GetCacheStats().Size
	assert.Greater(t, sizeAfterFirst, 0)

	second, err := authz.Can("ADMIN", "Products", "DELETE")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, sizeAfterFirst, authz.GetCacheStats().Size,
		"second identical query must be a cache hit, not a new fill")
}

// TestCacheExpiryRefetch tests that a TTL-expired decision resolves fresh
func TestCacheExpiryRefetch(t *testing.T) {
	clock := newFakeClock()
	authz, err := New(testConfig(),
		WithCache(100, 30*time.Second),
		WithClock(clock.Now))
	require.NoError(t, err)

	ok, err := authz.Can("CLIENT", "Products", "READ")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Minute)

	ok, err = authz.Can("CLIENT", "Products", "READ")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestClearCache tests manual invalidation
func TestClearCache(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	_, err = authz.Can("ADMIN", "Products", "DELETE")
	require.NoError(t, err)
	require.Greater(t, authz.GetCacheStats().Size, 0)

	authz.ClearCache()
	assert.Equal(t, 0, authz.GetCacheStats().Size)
}

// TestGetPermissions tests direct plus inherited permission listing
func TestGetPermissions(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, authz.SetRoleHierarchy(map[string][]string{
		"CLIENT": {"ADMIN"},
	}))

	perms, err := authz.GetPermissions("CLIENT", "Products")
	require.NoError(t, err)
	// Direct READ/VIEW plus everything inherited from ADMIN, deduplicated
	// and sorted.
	assert.Equal(t, []string{"CREATE", "DELETE", "READ", "UPDATE", "VIEW"}, perms)

	perms, err = authz.GetPermissions("CLIENT", "News")
	require.NoError(t, err)
	assert.Equal(t, []string{"UPDATE"}, perms)

	perms, err = authz.GetPermissions("ADMIN", "NoSuchResource")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

// TestGetPermissionsUnknownRole tests lenient and strict behavior
func TestGetPermissionsUnknownRole(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	perms, err := authz.GetPermissions("GHOST", "Products")
	require.NoError(t, err)
	assert.Empty(t, perms)

	strict, err := New(testConfig(), WithStrict())
	require.NoError(t, err)

	_, err = strict.GetPermissions("GHOST", "Products")
	assert.True(t, IsUnknownRole(err))
}

// TestGetResources tests direct plus inherited resource listing
func TestGetResources(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, authz.SetRoleHierarchy(map[string][]string{
		"CLIENT": {"EDITOR"},
	}))

	resources, err := authz.GetResources("CLIENT")
	require.NoError(t, err)
	assert.Equal(t, []string{"Articles", "Bookings", "Products"}, resources)

	resources, err = authz.GetResources("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, []string{"News", "Products"}, resources)
}

// TestGetRoles tests role name listing
func TestGetRoles(t *testing.T) {
	authz, err := New(testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"ADMIN", "CLIENT", "EDITOR"}, authz.GetRoles())
}
