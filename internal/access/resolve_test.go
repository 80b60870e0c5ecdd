package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	_ "github.com/communityhub/communityhub/testing"
)

func actorWithRole(role access.Role) *access.Actor {
	actor := &access.Actor{UserID: 1, Role: role, CommunityID: 7}
	if role != access.RoleSuperAdmin {
		actor.Units = []access.UnitRef{{ID: 11, Label: "A-101"}}
	}
	return actor
}

func TestResolveDeniedRequestLandsOnFallback(t *testing.T) {
	for _, role := range access.Roles() {
		grant := access.Allowed(role)
		for _, page := range access.Pages() {
			if grant.Allows(page) {
				continue
			}
			got := access.Resolve(actorWithRole(role), page)
			require.Equal(t, grant.Fallback, got,
				"role %s requesting %s", role, page)
		}
	}
}

func TestResolveAllowedRequestPassesThrough(t *testing.T) {
	for _, role := range access.Roles() {
		grant := access.Allowed(role)
		for _, page := range grant.Pages {
			require.Equal(t, page, access.Resolve(actorWithRole(role), page))
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	for _, role := range access.Roles() {
		actor := actorWithRole(role)
		for _, page := range access.Pages() {
			first := access.Resolve(actor, page)
			require.Equal(t, first, access.Resolve(actor, first))
		}
	}
	// Also a fixed point for setup-gated actors.
	gated := &access.Actor{UserID: 2, Role: access.RoleResident, CommunityID: 7}
	first := access.Resolve(gated, access.PageDashboard)
	require.Equal(t, first, access.Resolve(gated, first))
}

func TestResolveSetupGateOverridesGrants(t *testing.T) {
	for _, role := range []access.Role{access.RoleCommunityAdmin, access.RoleResident} {
		actor := &access.Actor{UserID: 3, Role: role, CommunityID: 7}
		require.True(t, actor.NeedsSetup())
		for _, page := range access.Pages() {
			require.Equal(t, access.PageCommunitySetup, access.Resolve(actor, page),
				"role %s requesting %s with no units", role, page)
		}
	}
}

func TestResolveStaffRolesAreNeverSetupGated(t *testing.T) {
	staff := []access.Role{
		access.RoleSuperAdmin, access.RoleTenant, access.RoleSecurityGuard,
		access.RoleSecurityAdmin, access.RoleHelpdeskAgent, access.RoleHelpdeskAdmin,
	}
	for _, role := range staff {
		actor := &access.Actor{UserID: 4, Role: role}
		require.False(t, actor.NeedsSetup())
		require.NotEqual(t, access.PageCommunitySetup,
			access.Resolve(actor, access.Allowed(role).Fallback))
	}
}

func TestResolveNilActorPassesRequestThrough(t *testing.T) {
	require.Equal(t, access.PageBilling, access.Resolve(nil, access.PageBilling))
}

func TestResolveScenarios(t *testing.T) {
	cases := []struct {
		name      string
		actor     *access.Actor
		requested access.Page
		want      access.Page
	}{
		{
			name:      "resident without unit is gated to setup",
			actor:     &access.Actor{UserID: 1, Role: access.RoleResident, CommunityID: 7},
			requested: access.PageDashboard,
			want:      access.PageCommunitySetup,
		},
		{
			name:      "resident with unit denied billing",
			actor:     actorWithRole(access.RoleResident),
			requested: access.PageBilling,
			want:      access.PageDashboard,
		},
		{
			name:      "security guard denied directory",
			actor:     actorWithRole(access.RoleSecurityGuard),
			requested: access.PageDirectory,
			want:      access.PageVisitors,
		},
		{
			name:      "super admin denied expenses",
			actor:     actorWithRole(access.RoleSuperAdmin),
			requested: access.PageExpenses,
			want:      access.PageDashboard,
		},
		{
			name:      "helpdesk admin allowed helpdesk",
			actor:     actorWithRole(access.RoleHelpdeskAdmin),
			requested: access.PageHelpdesk,
			want:      access.PageHelpdesk,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, access.Resolve(tc.actor, tc.requested))
		})
	}
}

func TestResolveStalePageFallsBack(t *testing.T) {
	// A leftover session token referencing a removed page parses as !ok and
	// must land on the role fallback, never panic.
	_, ok := access.ParsePage("reports")
	require.False(t, ok)

	actor := actorWithRole(access.RoleTenant)
	require.Equal(t, access.PageNotices, access.Resolve(actor, access.Page("reports")))
}
