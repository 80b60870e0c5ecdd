package access

// directoryVisibility governs which member records a viewer may see in the
// directory. This is a separate rule set from page access: a role that can
// open the directory page still only sees its own slice of the membership.
// The partition is asymmetric on purpose (a resident sees admins, an admin
// sees tenants, but a resident does not see tenants).
var directoryVisibility = map[Role][]Role{
	RoleSuperAdmin: Roles(),
	RoleCommunityAdmin: {
		RoleCommunityAdmin, RoleResident, RoleHelpdeskAdmin,
		RoleSecurityAdmin, RoleTenant,
	},
	RoleResident:      {RoleResident, RoleCommunityAdmin},
	RoleHelpdeskAdmin: {RoleHelpdeskAdmin, RoleHelpdeskAgent},
	RoleSecurityAdmin: {RoleSecurityAdmin, RoleSecurityGuard},
}

// DirectoryVisibleRoles returns the target roles a viewer may see. Roles
// absent from the partition see nobody.
func DirectoryVisibleRoles(viewer Role) []Role {
	return directoryVisibility[viewer]
}

// CanViewDirectoryEntry reports whether viewer may see a member with the
// target role.
func CanViewDirectoryEntry(viewer, target Role) bool {
	for _, r := range directoryVisibility[viewer] {
		if r == target {
			return true
		}
	}
	return false
}
