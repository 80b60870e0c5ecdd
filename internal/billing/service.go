package billing

import (
	"context"
	"time"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps the platform subscription overview. Every operation is
// restricted to the platform admin.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func isPlatformAdmin(actor *access.Actor) bool {
	return actor != nil && actor.Role == access.RoleSuperAdmin
}

// Accounts lists every community with its plan and outstanding balance.
func (s *Service) Accounts(ctx context.Context, actor *access.Actor) ([]Account, error) {
	if !isPlatformAdmin(actor) {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListAccounts(ctx)
}

// Invoices lists a community's subscription invoices, newest first.
func (s *Service) Invoices(ctx context.Context, actor *access.Actor, communityID int64) ([]Invoice, error) {
	if !isPlatformAdmin(actor) {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListInvoices(ctx, communityID)
}

// MarkInvoicePaid settles an open invoice.
func (s *Service) MarkInvoicePaid(ctx context.Context, actor *access.Actor, id int64) error {
	if !isPlatformAdmin(actor) {
		return shared.ErrForbidden
	}
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status == InvoicePaid {
		return ErrInvoicePaid
	}
	return s.repo.MarkPaid(ctx, id, s.now())
}
