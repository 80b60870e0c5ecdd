package access

import "fmt"

// Role identifies the closed set of account roles. The set mirrors the
// role CHECK constraint on the users table; anything else is rejected at
// the boundary by ParseRole and never reaches the resolver.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleCommunityAdmin Role = "community_admin"
	RoleResident       Role = "resident"
	RoleTenant         Role = "tenant"
	RoleSecurityGuard  Role = "security_guard"
	RoleSecurityAdmin  Role = "security_admin"
	RoleHelpdeskAgent  Role = "helpdesk_agent"
	RoleHelpdeskAdmin  Role = "helpdesk_admin"
)

// Roles lists every valid role in declaration order.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleCommunityAdmin,
		RoleResident,
		RoleTenant,
		RoleSecurityGuard,
		RoleSecurityAdmin,
		RoleHelpdeskAgent,
		RoleHelpdeskAdmin,
	}
}

// ParseRole validates a stored role value.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	switch role {
	case RoleSuperAdmin, RoleCommunityAdmin, RoleResident, RoleTenant,
		RoleSecurityGuard, RoleSecurityAdmin, RoleHelpdeskAgent, RoleHelpdeskAdmin:
		return role, nil
	}
	return "", fmt.Errorf("access: unknown role %q", s)
}

// Label returns the display name used in chrome and the directory.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Admin Platform"
	case RoleCommunityAdmin:
		return "Pengurus"
	case RoleResident:
		return "Warga"
	case RoleTenant:
		return "Penyewa"
	case RoleSecurityGuard:
		return "Petugas Keamanan"
	case RoleSecurityAdmin:
		return "Koordinator Keamanan"
	case RoleHelpdeskAgent:
		return "Petugas Bantuan"
	case RoleHelpdeskAdmin:
		return "Koordinator Bantuan"
	}
	return string(r)
}
