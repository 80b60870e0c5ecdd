package access

// UnitRef is a residence unit assignment carried on the actor snapshot.
type UnitRef struct {
	ID    int64
	Label string
}

// Actor is the per-request snapshot of the authenticated user. It is loaded
// fresh on every request so a completed setup flow is visible on the next
// navigation without any cache invalidation.
type Actor struct {
	UserID      int64
	Name        string
	Email       string
	Role        Role
	Units       []UnitRef
	CommunityID int64
}

// NeedsSetup reports whether the actor must complete community setup before
// any other page may render. Only community admins and residents are gated;
// staff roles never own units.
func (a *Actor) NeedsSetup() bool {
	if a == nil {
		return false
	}
	if a.Role != RoleCommunityAdmin && a.Role != RoleResident {
		return false
	}
	return len(a.Units) == 0
}
