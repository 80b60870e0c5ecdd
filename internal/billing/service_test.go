package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/billing"
	"github.com/communityhub/communityhub/internal/shared"
	_ "github.com/communityhub/communityhub/testing"
)

type memoryRepo struct {
	accounts []billing.Account
	invoices map[int64]billing.Invoice
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts: []billing.Account{
			{CommunityID: 7, Name: "Griya Asri", Plan: billing.PlanStandard, UnitCount: 120, Active: true, OpenAmount: 500000},
		},
		invoices: map[int64]billing.Invoice{
			1: {ID: 1, CommunityID: 7, Period: "2026-08", Amount: 500000, Status: billing.InvoiceOpen},
		},
	}
}

func (r *memoryRepo) ListAccounts(ctx context.Context) ([]billing.Account, error) {
	return r.accounts, nil
}

func (r *memoryRepo) ListInvoices(ctx context.Context, communityID int64) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, i := range r.invoices {
		if i.CommunityID == communityID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, id int64) (billing.Invoice, error) {
	i, ok := r.invoices[id]
	if !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	return i, nil
}

func (r *memoryRepo) MarkPaid(ctx context.Context, id int64, at time.Time) error {
	i, ok := r.invoices[id]
	if !ok || i.Status != billing.InvoiceOpen {
		return billing.ErrInvoicePaid
	}
	i.Status = billing.InvoicePaid
	i.PaidAt = &at
	r.invoices[id] = i
	return nil
}

var (
	platformAdmin  = &access.Actor{UserID: 1, Role: access.RoleSuperAdmin}
	communityAdmin = &access.Actor{UserID: 2, Role: access.RoleCommunityAdmin, CommunityID: 7,
		Units: []access.UnitRef{{ID: 9, Label: "P-001"}}}
)

func TestPlatformAdminOnly(t *testing.T) {
	service := billing.NewService(newMemoryRepo())
	ctx := context.Background()

	// Even the community admin never reaches subscription data.
	_, err := service.Accounts(ctx, communityAdmin)
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = service.Invoices(ctx, communityAdmin, 7)
	require.ErrorIs(t, err, shared.ErrForbidden)
	require.ErrorIs(t, service.MarkInvoicePaid(ctx, communityAdmin, 1), shared.ErrForbidden)

	accounts, err := service.Accounts(ctx, platformAdmin)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, 120, accounts[0].UnitCount)
}

func TestMarkInvoicePaidOnce(t *testing.T) {
	repo := newMemoryRepo()
	service := billing.NewService(repo)
	ctx := context.Background()

	require.NoError(t, service.MarkInvoicePaid(ctx, platformAdmin, 1))
	require.ErrorIs(t, service.MarkInvoicePaid(ctx, platformAdmin, 1), billing.ErrInvoicePaid)
	require.NotNil(t, repo.invoices[1].PaidAt)

	require.ErrorIs(t, service.MarkInvoicePaid(ctx, platformAdmin, 99), billing.ErrNotFound)
}
