package auth

import (
	"testing"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/community"
)

func TestOccupancyForRoleUsesCommunityEnum(t *testing.T) {
	if got := occupancyForRole(access.RoleTenant); got != community.OccupancyTenant {
		t.Fatalf("tenant invite occupancy = %q, want %q", got, community.OccupancyTenant)
	}
	if got := occupancyForRole(access.RoleResident); got != community.OccupancyOwner {
		t.Fatalf("resident invite occupancy = %q, want %q", got, community.OccupancyOwner)
	}
	if got := occupancyForRole(access.RoleCommunityAdmin); got != community.OccupancyOwner {
		t.Fatalf("admin invite occupancy = %q, want %q", got, community.OccupancyOwner)
	}
}
