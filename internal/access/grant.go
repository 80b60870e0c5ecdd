package access

// Grant is the set of pages a role may open plus the page it lands on when a
// request is denied. The fallback is always a member of the set.
type Grant struct {
	Pages    []Page
	Fallback Page
}

// Allows reports whether the grant covers the page.
func (g Grant) Allows(page Page) bool {
	for _, p := range g.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// grants is the single source of truth for page-level access. Every surface
// that filters or redirects (resolver, sidebar, bottom bar) reads this table
// through Allowed; the role→page mapping is never re-typed anywhere else.
//
// community_setup is intentionally absent from every grant: it is reachable
// only through the setup gate in Resolve, and admins keep bulk_operations
// after setup so onboarding can continue.
var grants = map[Role]Grant{
	RoleSuperAdmin: {
		Pages:    []Page{PageDashboard, PageBilling},
		Fallback: PageDashboard,
	},
	RoleCommunityAdmin: {
		Pages: []Page{
			PageDashboard, PageNotices, PageHelpdesk, PageVisitors,
			PageAmenities, PageDirectory, PageMaintenance, PageExpenses,
			PageBulkOperations,
		},
		Fallback: PageDashboard,
	},
	RoleResident: {
		Pages: []Page{
			PageDashboard, PageNotices, PageHelpdesk, PageVisitors,
			PageAmenities, PageDirectory, PageMaintenance, PageExpenses,
		},
		Fallback: PageDashboard,
	},
	RoleTenant: {
		Pages:    []Page{PageNotices, PageHelpdesk, PageVisitors, PageAmenities},
		Fallback: PageNotices,
	},
	RoleSecurityGuard: {
		Pages:    []Page{PageNotices, PageVisitors},
		Fallback: PageVisitors,
	},
	RoleSecurityAdmin: {
		Pages:    []Page{PageNotices, PageVisitors, PageDirectory},
		Fallback: PageVisitors,
	},
	RoleHelpdeskAgent: {
		Pages:    []Page{PageNotices, PageHelpdesk},
		Fallback: PageHelpdesk,
	},
	RoleHelpdeskAdmin: {
		Pages:    []Page{PageNotices, PageHelpdesk, PageDirectory},
		Fallback: PageHelpdesk,
	},
}

// Allowed returns the grant for a role. The role enumeration is closed and
// validated at the boundary by ParseRole, so a missing entry is a programming
// error; the super admin grant doubles as a safe landing for that case.
func Allowed(role Role) Grant {
	if g, ok := grants[role]; ok {
		return g
	}
	return Grant{Pages: []Page{PageDashboard}, Fallback: PageDashboard}
}
