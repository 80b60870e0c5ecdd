package access

// Page identifies a top-level application view. The set is closed; stale
// values (for example a last-page session entry that outlived a release)
// simply fail ParsePage and fall back through the resolver.
type Page string

const (
	PageDashboard      Page = "dashboard"
	PageNotices        Page = "notices"
	PageHelpdesk       Page = "helpdesk"
	PageVisitors       Page = "visitors"
	PageAmenities      Page = "amenities"
	PageDirectory      Page = "directory"
	PageMaintenance    Page = "maintenance"
	PageExpenses       Page = "expenses"
	PageBulkOperations Page = "bulk_operations"
	PageCommunitySetup Page = "community_setup"
	PageBilling        Page = "billing"
)

// Pages lists every page in declaration order.
func Pages() []Page {
	return []Page{
		PageDashboard,
		PageNotices,
		PageHelpdesk,
		PageVisitors,
		PageAmenities,
		PageDirectory,
		PageMaintenance,
		PageExpenses,
		PageBulkOperations,
		PageCommunitySetup,
		PageBilling,
	}
}

// ParsePage maps a stored token back to a Page. Unknown tokens report !ok
// instead of an error so callers can fall through to the role fallback.
func ParsePage(s string) (Page, bool) {
	page := Page(s)
	switch page {
	case PageDashboard, PageNotices, PageHelpdesk, PageVisitors, PageAmenities,
		PageDirectory, PageMaintenance, PageExpenses, PageBulkOperations,
		PageCommunitySetup, PageBilling:
		return page, true
	}
	return "", false
}

// Path returns the URL prefix serving the page.
func (p Page) Path() string {
	switch p {
	case PageDashboard:
		return "/dashboard"
	case PageNotices:
		return "/notices"
	case PageHelpdesk:
		return "/helpdesk"
	case PageVisitors:
		return "/visitors"
	case PageAmenities:
		return "/amenities"
	case PageDirectory:
		return "/directory"
	case PageMaintenance:
		return "/maintenance"
	case PageExpenses:
		return "/expenses"
	case PageBulkOperations:
		return "/bulk-operations"
	case PageCommunitySetup:
		return "/setup"
	case PageBilling:
		return "/billing"
	}
	return "/"
}

// Label returns the display name used in navigation chrome.
func (p Page) Label() string {
	switch p {
	case PageDashboard:
		return "Beranda"
	case PageNotices:
		return "Pengumuman"
	case PageHelpdesk:
		return "Bantuan"
	case PageVisitors:
		return "Tamu"
	case PageAmenities:
		return "Fasilitas"
	case PageDirectory:
		return "Direktori"
	case PageMaintenance:
		return "Iuran"
	case PageExpenses:
		return "Pengeluaran"
	case PageBulkOperations:
		return "Registrasi Massal"
	case PageCommunitySetup:
		return "Pengaturan Awal"
	case PageBilling:
		return "Langganan"
	}
	return string(p)
}
