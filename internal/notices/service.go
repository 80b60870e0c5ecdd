package notices

import (
	"context"
	"strings"
	"time"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps notice board rules. Write operations are reserved for the
// community admin; this is in-page authorization on top of page access.
type Service struct {
	repo  Repository
	clock func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: func() time.Time { return time.Now().UTC() }}
}

// List returns the default board view: unexpired notices, pinned first.
func (s *Service) List(ctx context.Context, communityID int64) ([]Notice, error) {
	return s.repo.List(ctx, communityID, false, s.clock())
}

// ListAll includes expired notices, for the admin archive view.
func (s *Service) ListAll(ctx context.Context, communityID int64) ([]Notice, error) {
	return s.repo.List(ctx, communityID, true, s.clock())
}

// Get fetches a single notice scoped to the community.
func (s *Service) Get(ctx context.Context, communityID, id int64) (Notice, error) {
	return s.repo.Get(ctx, communityID, id)
}

// Create publishes a notice.
func (s *Service) Create(ctx context.Context, actor *access.Actor, n Notice) (Notice, error) {
	if err := s.authorizeWrite(actor); err != nil {
		return Notice{}, err
	}
	if err := s.validate(&n); err != nil {
		return Notice{}, err
	}
	n.CommunityID = actor.CommunityID
	n.AuthorID = actor.UserID
	return s.repo.Create(ctx, n)
}

// Update edits an existing notice.
func (s *Service) Update(ctx context.Context, actor *access.Actor, n Notice) error {
	if err := s.authorizeWrite(actor); err != nil {
		return err
	}
	if err := s.validate(&n); err != nil {
		return err
	}
	n.CommunityID = actor.CommunityID
	return s.repo.Update(ctx, n)
}

// Delete removes a notice.
func (s *Service) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if err := s.authorizeWrite(actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, actor.CommunityID, id)
}

// CountActive supports the dashboard tile.
func (s *Service) CountActive(ctx context.Context, communityID int64) (int, error) {
	return s.repo.CountActive(ctx, communityID, s.clock())
}

func (s *Service) authorizeWrite(actor *access.Actor) error {
	if actor == nil || actor.Role != access.RoleCommunityAdmin {
		return shared.ErrForbidden
	}
	return nil
}

func (s *Service) validate(n *Notice) error {
	n.Title = strings.TrimSpace(n.Title)
	n.Body = strings.TrimSpace(n.Body)
	if n.Title == "" || n.Body == "" {
		return shared.ErrValidation
	}
	if _, err := ParseCategory(string(n.Category)); err != nil {
		return err
	}
	if n.ExpiresAt != nil && n.ExpiresAt.Before(s.clock()) {
		return shared.ErrValidation
	}
	return nil
}
