package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPermissionCounts(t *testing.T) {
	require.Len(t, DefaultPermissions(RoleGuest), 5)
	require.Len(t, DefaultPermissions(RoleClient), 6)
	require.Len(t, DefaultPermissions(RoleEmployee), 13)
	require.Len(t, DefaultPermissions(RoleAdmin), len(Catalog()))
}

func TestAdminDefaultsEqualCatalog(t *testing.T) {
	admin := DefaultPermissions(RoleAdmin)
	for _, p := range Catalog() {
		require.True(t, admin.Has(p), "admin missing %s", p)
	}
	require.Len(t, admin, len(Catalog()))
}

func TestAdminOnlySubset(t *testing.T) {
	require.Len(t, AdminOnly(), 6)
	for _, role := range []Role{RoleGuest, RoleClient, RoleEmployee} {
		defaults := DefaultPermissions(role)
		for _, p := range AdminOnly() {
			require.False(t, defaults.Has(p), "%s should not hold %s by default", role, p)
		}
	}
}

func TestDefaultPermissionsUnknownRole(t *testing.T) {
	require.NotNil(t, DefaultPermissions(Role("")))
	require.Empty(t, DefaultPermissions(Role("")))
	require.Empty(t, DefaultPermissions(Role("superuser")))
}

func TestDefaultPermissionsReturnsCopy(t *testing.T) {
	first := DefaultPermissions(RoleGuest)
	delete(first, PermViewAccount)
	first[PermDeleteUser] = struct{}{}

	second := DefaultPermissions(RoleGuest)
	require.True(t, second.Has(PermViewAccount))
	require.False(t, second.Has(PermDeleteUser))
	require.Len(t, second, 5)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("employee")
	require.NoError(t, err)
	require.Equal(t, RoleEmployee, role)

	_, err = ParseRole("root")
	require.Error(t, err)
}

func TestParsePermission(t *testing.T) {
	p, ok := ParsePermission("clients.view")
	require.True(t, ok)
	require.Equal(t, PermViewClient, p)

	_, ok = ParsePermission("clients.nuke")
	require.False(t, ok)
}
