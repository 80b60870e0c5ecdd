package access

// Resolve derives the page that actually renders for a navigation request.
// It is pure and synchronous so the guard can call it before any template
// executes; an unauthorized page is never rendered, not even for one frame.
//
// Order matters: the setup gate outranks the permission table, so a gated
// actor is sent to community_setup even when the requested page would
// otherwise be allowed for the role.
func Resolve(actor *Actor, requested Page) Page {
	if actor == nil {
		return requested
	}
	if actor.NeedsSetup() {
		return PageCommunitySetup
	}
	grant := Allowed(actor.Role)
	if grant.Allows(requested) {
		return requested
	}
	return grant.Fallback
}
