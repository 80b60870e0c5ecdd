package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	_ "github.com/communityhub/communityhub/testing"
)

func TestDirectoryPartition(t *testing.T) {
	cases := []struct {
		viewer  access.Role
		visible []access.Role
	}{
		{access.RoleSuperAdmin, access.Roles()},
		{access.RoleCommunityAdmin, []access.Role{
			access.RoleCommunityAdmin, access.RoleResident,
			access.RoleHelpdeskAdmin, access.RoleSecurityAdmin, access.RoleTenant,
		}},
		{access.RoleResident, []access.Role{access.RoleResident, access.RoleCommunityAdmin}},
		{access.RoleHelpdeskAdmin, []access.Role{access.RoleHelpdeskAdmin, access.RoleHelpdeskAgent}},
		{access.RoleSecurityAdmin, []access.Role{access.RoleSecurityAdmin, access.RoleSecurityGuard}},
		{access.RoleTenant, nil},
		{access.RoleSecurityGuard, nil},
		{access.RoleHelpdeskAgent, nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.viewer), func(t *testing.T) {
			allowed := make(map[access.Role]bool, len(tc.visible))
			for _, r := range tc.visible {
				allowed[r] = true
			}
			for _, target := range access.Roles() {
				require.Equal(t, allowed[target],
					access.CanViewDirectoryEntry(tc.viewer, target),
					"viewer %s target %s", tc.viewer, target)
			}
		})
	}
}

func TestDirectoryPartitionIsAsymmetric(t *testing.T) {
	// Regression guard: the partition must not be made symmetric. An admin
	// sees tenants but a resident does not, even though both see each other.
	require.True(t, access.CanViewDirectoryEntry(access.RoleCommunityAdmin, access.RoleTenant))
	require.False(t, access.CanViewDirectoryEntry(access.RoleResident, access.RoleTenant))

	require.True(t, access.CanViewDirectoryEntry(access.RoleResident, access.RoleCommunityAdmin))
	require.True(t, access.CanViewDirectoryEntry(access.RoleCommunityAdmin, access.RoleResident))
}

func TestDirectoryVisibleRolesMatchesPredicate(t *testing.T) {
	for _, viewer := range access.Roles() {
		listed := make(map[access.Role]bool)
		for _, r := range access.DirectoryVisibleRoles(viewer) {
			listed[r] = true
		}
		for _, target := range access.Roles() {
			require.Equal(t, listed[target],
				access.CanViewDirectoryEntry(viewer, target))
		}
	}
}
