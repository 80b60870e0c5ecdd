package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// KeyChecker guards payment recording against double submission.
type KeyChecker interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service wraps the maintenance dues ledger. The community admin issues dues
// and records payments; residents and tenants read their own units' ledger.
type Service struct {
	repo Repository
	keys KeyChecker
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, keys KeyChecker) *Service {
	return &Service{repo: repo, keys: keys, now: time.Now}
}

func isLedgerAdmin(actor *access.Actor) bool {
	return actor != nil && actor.Role == access.RoleCommunityAdmin
}

// ListFor returns ledger entries visible to the actor, optionally filtered
// by status.
func (s *Service) ListFor(ctx context.Context, actor *access.Actor, status DueStatus) ([]Due, error) {
	if status != "" && status != DueUnpaid && status != DuePaid {
		return nil, shared.ErrValidation
	}
	if isLedgerAdmin(actor) {
		return s.repo.ListByCommunity(ctx, actor.CommunityID, status)
	}
	unitIDs := make([]int64, 0, len(actor.Units))
	for _, u := range actor.Units {
		unitIDs = append(unitIDs, u.ID)
	}
	return s.repo.ListByUnits(ctx, actor.CommunityID, unitIDs, status)
}

// Get fetches one ledger entry with unit scoping for non-admins.
func (s *Service) Get(ctx context.Context, actor *access.Actor, id int64) (Due, error) {
	due, err := s.repo.Get(ctx, actor.CommunityID, id)
	if err != nil {
		return Due{}, err
	}
	if !isLedgerAdmin(actor) && !hasUnit(actor, due.UnitID) {
		return Due{}, ErrNotFound
	}
	return due, nil
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

// Issue creates a new unpaid entry. Admin only.
func (s *Service) Issue(ctx context.Context, actor *access.Actor, d Due) (Due, error) {
	if !isLedgerAdmin(actor) {
		return Due{}, shared.ErrForbidden
	}
	if _, err := time.Parse("2006-01", d.Period); err != nil {
		return Due{}, ErrBadPeriod
	}
	if d.Amount <= 0 || d.UnitID == 0 || d.DueDate.IsZero() {
		return Due{}, shared.ErrValidation
	}
	d.CommunityID = actor.CommunityID
	return s.repo.Create(ctx, d)
}

// RecordPayment marks an entry paid exactly once. The idempotency key comes
// from the submitted form, so a double-click or a replayed request settles
// into the same payment instead of a second one.
func (s *Service) RecordPayment(ctx context.Context, actor *access.Actor, id int64, key string) (Due, error) {
	if !isLedgerAdmin(actor) {
		return Due{}, shared.ErrForbidden
	}
	due, err := s.repo.Get(ctx, actor.CommunityID, id)
	if err != nil {
		return Due{}, err
	}

	scoped := fmt.Sprintf("%d:%d:%s", actor.CommunityID, id, key)
	if err := s.keys.CheckAndInsert(ctx, scoped, "maintenance"); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			// Replay of a processed request: hand back the settled entry.
			return s.repo.Get(ctx, actor.CommunityID, id)
		}
		return Due{}, err
	}
	if due.Status == DuePaid {
		_ = s.keys.Delete(ctx, scoped)
		return Due{}, ErrAlreadyPaid
	}

	ref := uuid.New()
	if err := s.repo.MarkPaid(ctx, actor.CommunityID, id, ref, actor.UserID, s.now()); err != nil {
		// Roll the key back so a later retry can succeed.
		_ = s.keys.Delete(ctx, scoped)
		return Due{}, err
	}
	return s.repo.Get(ctx, actor.CommunityID, id)
}

// DueSoon lists unpaid entries falling due within the lead window. The
// reminder job fans these out as notifications.
func (s *Service) DueSoon(ctx context.Context, lead time.Duration) ([]Due, error) {
	now := s.now()
	return s.repo.ListDueWithin(ctx, now, now.Add(lead))
}

// OutstandingTotal supports the dashboard tile.
func (s *Service) OutstandingTotal(ctx context.Context, communityID int64) (int64, error) {
	return s.repo.SumUnpaid(ctx, communityID)
}
