package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	_ "github.com/communityhub/communityhub/testing"
)

func pageSet(items []access.NavItem) map[access.Page]bool {
	set := make(map[access.Page]bool, len(items))
	for _, item := range items {
		set[item.Page] = true
	}
	return set
}

func TestVisibleNavItemsPreservesMasterOrder(t *testing.T) {
	master := access.SidebarItems()
	position := make(map[access.Page]int, len(master))
	for i, item := range master {
		position[item.Page] = i
	}
	for _, role := range access.Roles() {
		visible := access.VisibleNavItems(role, master)
		last := -1
		for _, item := range visible {
			require.Greater(t, position[item.Page], last,
				"role %s: %s out of master order", role, item.Page)
			last = position[item.Page]
		}
	}
}

func TestVisibleNavItemsMatchesGrant(t *testing.T) {
	for _, role := range access.Roles() {
		grant := access.Allowed(role)
		visible := pageSet(access.VisibleNavItems(role, access.SidebarItems()))
		for _, item := range access.SidebarItems() {
			require.Equal(t, grant.Allows(item.Page), visible[item.Page],
				"role %s page %s", role, item.Page)
		}
	}
}

func TestChromeSurfacesAgreeOnSharedPages(t *testing.T) {
	// Sidebar and bottom bar filter through the same grant, so any page
	// present in both master lists must get the same allow/deny per role.
	bottomMaster := pageSet(access.BottomNavItems())
	for _, role := range access.Roles() {
		sidebar := pageSet(access.VisibleNavItems(role, access.SidebarItems()))
		bottom := pageSet(access.VisibleNavItems(role, access.BottomNavItems()))
		for page := range bottomMaster {
			require.Equal(t, sidebar[page], bottom[page],
				"role %s disagrees across surfaces on %s", role, page)
		}
	}
}

func TestBottomNavIsSubsetOfSidebar(t *testing.T) {
	sidebar := pageSet(access.SidebarItems())
	for _, item := range access.BottomNavItems() {
		require.True(t, sidebar[item.Page], "bottom nav lists %s missing from sidebar", item.Page)
	}
}
