package visitors

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps gate log rules. Security staff and the community admin see
// the whole community log; residents and tenants only their own entries.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func isGateStaff(actor *access.Actor) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case access.RoleSecurityGuard, access.RoleSecurityAdmin, access.RoleCommunityAdmin:
		return true
	}
	return false
}

// newGatePass issues a short human-readable code handed to the visitor.
func newGatePass() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// ListFor returns the visits visible to the actor.
func (s *Service) ListFor(ctx context.Context, actor *access.Actor) ([]Visit, error) {
	if isGateStaff(actor) {
		return s.repo.ListByCommunity(ctx, actor.CommunityID)
	}
	return s.repo.ListByHost(ctx, actor.CommunityID, actor.UserID)
}

// Preauthorize registers an expected visitor for one of the actor's units and
// issues a gate pass code.
func (s *Service) Preauthorize(ctx context.Context, actor *access.Actor, v Visit) (Visit, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Purpose = strings.TrimSpace(v.Purpose)
	if v.Name == "" || v.ExpectedOn.IsZero() {
		return Visit{}, shared.ErrValidation
	}
	if v.ExpectedOn.Before(s.now().Truncate(24 * time.Hour)) {
		return Visit{}, shared.ErrValidation
	}
	if !hasUnit(actor, v.UnitID) {
		return Visit{}, shared.ErrForbidden
	}
	v.CommunityID = actor.CommunityID
	v.HostID = actor.UserID
	v.Status = StatusExpected
	v.GatePass = newGatePass()
	return s.repo.Create(ctx, v)
}

func hasUnit(actor *access.Actor, unitID int64) bool {
	if actor == nil {
		return false
	}
	for _, u := range actor.Units {
		if u.ID == unitID {
			return true
		}
	}
	return false
}

// Lookup resolves a gate pass code to its visit. Gate staff only.
func (s *Service) Lookup(ctx context.Context, actor *access.Actor, pass string) (Visit, error) {
	if !isGateStaff(actor) {
		return Visit{}, shared.ErrForbidden
	}
	pass = strings.ToUpper(strings.TrimSpace(pass))
	if pass == "" {
		return Visit{}, ErrGatePassInvalid
	}
	return s.repo.FindByGatePass(ctx, actor.CommunityID, pass)
}

// CheckIn records the visitor's arrival. Gate staff only; the visit must
// still be expected.
func (s *Service) CheckIn(ctx context.Context, actor *access.Actor, id int64) error {
	return s.gateTransition(ctx, actor, id, StatusExpected, StatusCheckedIn, "")
}

// CheckOut records the visitor's departure.
func (s *Service) CheckOut(ctx context.Context, actor *access.Actor, id int64) error {
	return s.gateTransition(ctx, actor, id, StatusCheckedIn, StatusCheckedOut, "")
}

// Deny refuses entry to an expected visitor. A note is required so the host
// can see why.
func (s *Service) Deny(ctx context.Context, actor *access.Actor, id int64, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.ErrValidation
	}
	return s.gateTransition(ctx, actor, id, StatusExpected, StatusDenied, note)
}

func (s *Service) gateTransition(ctx context.Context, actor *access.Actor, id int64, from, to Status, note string) error {
	if !isGateStaff(actor) {
		return shared.ErrForbidden
	}
	visit, err := s.repo.Get(ctx, actor.CommunityID, id)
	if err != nil {
		return err
	}
	if visit.Status != from {
		return ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, actor.CommunityID, id, to, note, s.now())
}

// CountExpectedToday supports the dashboard tile.
func (s *Service) CountExpectedToday(ctx context.Context, communityID int64) (int, error) {
	return s.repo.CountExpectedOn(ctx, communityID, s.now())
}

// PurgeOlderThan removes settled log entries past the retention window. It
// is driven by the background worker, not a request path.
func (s *Service) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, s.now().Add(-retention))
}
