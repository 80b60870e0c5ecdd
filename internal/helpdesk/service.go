package helpdesk

import (
	"context"
	"strings"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps help desk rules. Residents and tenants see their own
// tickets; helpdesk staff and the community admin work the full queue.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func isStaff(actor *access.Actor) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case access.RoleHelpdeskAgent, access.RoleHelpdeskAdmin, access.RoleCommunityAdmin:
		return true
	}
	return false
}

// ListFor returns the tickets visible to the actor.
func (s *Service) ListFor(ctx context.Context, actor *access.Actor) ([]Ticket, error) {
	if isStaff(actor) {
		return s.repo.ListByCommunity(ctx, actor.CommunityID)
	}
	return s.repo.ListByReporter(ctx, actor.CommunityID, actor.UserID)
}

// Get fetches one ticket, enforcing reporter scoping for non-staff.
func (s *Service) Get(ctx context.Context, actor *access.Actor, id int64) (Ticket, error) {
	ticket, err := s.repo.Get(ctx, actor.CommunityID, id)
	if err != nil {
		return Ticket{}, err
	}
	if !isStaff(actor) && ticket.ReporterID != actor.UserID {
		// Indistinguishable from a missing ticket on purpose.
		return Ticket{}, ErrNotFound
	}
	return ticket, nil
}

// Create files a new ticket for the actor.
func (s *Service) Create(ctx context.Context, actor *access.Actor, t Ticket) (Ticket, error) {
	t.Subject = strings.TrimSpace(t.Subject)
	t.Description = strings.TrimSpace(t.Description)
	if t.Subject == "" || t.Description == "" {
		return Ticket{}, shared.ErrValidation
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return Ticket{}, err
	}
	t.CommunityID = actor.CommunityID
	t.ReporterID = actor.UserID
	t.Status = StatusOpen
	return s.repo.Create(ctx, t)
}

// Transition moves a ticket through its state machine. Staff may perform any
// allowed transition; a reporter may only reopen their own resolved ticket.
func (s *Service) Transition(ctx context.Context, actor *access.Actor, id int64, target Status) error {
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !isStaff(actor) {
		reopening := ticket.Status == StatusResolved && target == StatusOpen
		if !reopening || ticket.ReporterID != actor.UserID {
			return shared.ErrForbidden
		}
	}
	if !CanTransition(ticket.Status, target) {
		return ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, actor.CommunityID, id, target)
}

// Assign sets or clears the ticket assignee. Staff only.
func (s *Service) Assign(ctx context.Context, actor *access.Actor, id int64, assigneeID *int64) error {
	if !isStaff(actor) {
		return shared.ErrForbidden
	}
	if _, err := s.repo.Get(ctx, actor.CommunityID, id); err != nil {
		return err
	}
	return s.repo.UpdateAssignee(ctx, actor.CommunityID, id, assigneeID)
}

// Comment appends a discussion entry, visible to anyone who can see the
// ticket.
func (s *Service) Comment(ctx context.Context, actor *access.Actor, ticketID int64, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, shared.ErrValidation
	}
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return Comment{}, err
	}
	return s.repo.AddComment(ctx, Comment{TicketID: ticketID, AuthorID: actor.UserID, Body: body})
}

// Comments lists the discussion for a ticket the actor may see.
func (s *Service) Comments(ctx context.Context, actor *access.Actor, ticketID int64) ([]Comment, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, ticketID)
}

// CountOpen supports the dashboard tile.
func (s *Service) CountOpen(ctx context.Context, communityID int64) (int, error) {
	return s.repo.CountOpen(ctx, communityID)
}
