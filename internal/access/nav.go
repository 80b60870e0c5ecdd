package access

// NavItem is one entry in a navigation surface, tagged with its target page.
type NavItem struct {
	Page  Page
	Label string
	Icon  string
}

// SidebarItems is the master list for the wide-viewport side panel. Order is
// a deliberate UX decision and must survive filtering.
func SidebarItems() []NavItem {
	return []NavItem{
		{Page: PageDashboard, Label: PageDashboard.Label(), Icon: "home"},
		{Page: PageNotices, Label: PageNotices.Label(), Icon: "megaphone"},
		{Page: PageHelpdesk, Label: PageHelpdesk.Label(), Icon: "lifebuoy"},
		{Page: PageVisitors, Label: PageVisitors.Label(), Icon: "id-card"},
		{Page: PageAmenities, Label: PageAmenities.Label(), Icon: "calendar"},
		{Page: PageDirectory, Label: PageDirectory.Label(), Icon: "users"},
		{Page: PageMaintenance, Label: PageMaintenance.Label(), Icon: "receipt"},
		{Page: PageExpenses, Label: PageExpenses.Label(), Icon: "wallet"},
		{Page: PageBulkOperations, Label: PageBulkOperations.Label(), Icon: "upload"},
		{Page: PageBilling, Label: PageBilling.Label(), Icon: "credit-card"},
	}
}

// BottomNavItems is the master list for the narrow-viewport bottom bar, a
// compact subset of the sidebar in the same relative order.
func BottomNavItems() []NavItem {
	return []NavItem{
		{Page: PageDashboard, Label: PageDashboard.Label(), Icon: "home"},
		{Page: PageNotices, Label: PageNotices.Label(), Icon: "megaphone"},
		{Page: PageHelpdesk, Label: PageHelpdesk.Label(), Icon: "lifebuoy"},
		{Page: PageVisitors, Label: PageVisitors.Label(), Icon: "id-card"},
		{Page: PageAmenities, Label: PageAmenities.Label(), Icon: "calendar"},
	}
}

// VisibleNavItems filters a master list down to the entries the role may
// open, preserving the master order. Both chrome surfaces call this with
// their own master list, so they can never disagree on allow/deny.
func VisibleNavItems(role Role, master []NavItem) []NavItem {
	grant := Allowed(role)
	visible := make([]NavItem, 0, len(master))
	for _, item := range master {
		if grant.Allows(item.Page) {
			visible = append(visible, item)
		}
	}
	return visible
}
