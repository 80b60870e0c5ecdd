package expenses

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// ApprovalTrail records who submitted and who decided each expense.
type ApprovalTrail interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
	List(ctx context.Context, module string, ref uuid.UUID) ([]shared.ApprovalLog, error)
}

const approvalModule = "expenses"

// Service wraps community expense review. Residents and staff submit;
// only the community admin decides.
type Service struct {
	repo      Repository
	approvals ApprovalTrail
}

// NewService constructs a new Service.
func NewService(repo Repository, approvals ApprovalTrail) *Service {
	return &Service{repo: repo, approvals: approvals}
}

func isReviewer(actor *access.Actor) bool {
	return actor != nil && actor.Role == access.RoleCommunityAdmin
}

// List returns the community's expenses, optionally filtered by status.
func (s *Service) List(ctx context.Context, actor *access.Actor, status Status) ([]Expense, error) {
	if status != "" && status != StatusSubmitted && status != StatusApproved && status != StatusRejected {
		return nil, shared.ErrValidation
	}
	return s.repo.ListByCommunity(ctx, actor.CommunityID, status)
}

// Submit files a new expense for review.
func (s *Service) Submit(ctx context.Context, actor *access.Actor, e Expense) (Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	e.Vendor = strings.TrimSpace(e.Vendor)
	e.ReceiptRef = strings.TrimSpace(e.ReceiptRef)
	if e.Description == "" || e.Amount <= 0 || e.IncurredAt.IsZero() {
		return Expense{}, shared.ErrValidation
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return Expense{}, err
	}
	e.Ref = uuid.New()
	e.CommunityID = actor.CommunityID
	e.SubmittedBy = actor.UserID
	e.Status = StatusSubmitted

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	if err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  approvalModule,
		RefID:   created.Ref,
		ActorID: actor.UserID,
		Action:  shared.ApprovalSubmit,
	}); err != nil {
		return Expense{}, err
	}
	return created, nil
}

// Approve accepts a submitted expense. Admin only.
func (s *Service) Approve(ctx context.Context, actor *access.Actor, id int64, note string) error {
	return s.decide(ctx, actor, id, StatusApproved, shared.ApprovalApprove, note)
}

// Reject declines a submitted expense. Admin only; the note travels back to
// the submitter.
func (s *Service) Reject(ctx context.Context, actor *access.Actor, id int64, note string) error {
	if strings.TrimSpace(note) == "" {
		return shared.ErrValidation
	}
	return s.decide(ctx, actor, id, StatusRejected, shared.ApprovalReject, note)
}

func (s *Service) decide(ctx context.Context, actor *access.Actor, id int64, status Status, action shared.ApprovalAction, note string) error {
	if !isReviewer(actor) {
		return shared.ErrForbidden
	}
	expense, err := s.repo.Get(ctx, actor.CommunityID, id)
	if err != nil {
		return err
	}
	if expense.Status != StatusSubmitted {
		return ErrAlreadyDecided
	}
	if err := s.repo.Decide(ctx, actor.CommunityID, id, status, strings.TrimSpace(note)); err != nil {
		return err
	}
	return s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  approvalModule,
		RefID:   expense.Ref,
		ActorID: actor.UserID,
		Action:  action,
		Note:    strings.TrimSpace(note),
	})
}

// Trail returns the approval history of one expense.
func (s *Service) Trail(ctx context.Context, actor *access.Actor, id int64) ([]shared.ApprovalLog, error) {
	expense, err := s.repo.Get(ctx, actor.CommunityID, id)
	if err != nil {
		return nil, err
	}
	return s.approvals.List(ctx, approvalModule, expense.Ref)
}

// CountSubmitted supports the dashboard tile.
func (s *Service) CountSubmitted(ctx context.Context, communityID int64) (int, error) {
	return s.repo.CountSubmitted(ctx, communityID)
}
