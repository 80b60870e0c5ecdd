package maintenance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/maintenance"
	"github.com/communityhub/communityhub/internal/shared"
	_ "github.com/communityhub/communityhub/testing"
)

type memoryRepo struct {
	dues   map[int64]maintenance.Due
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{dues: make(map[int64]maintenance.Due)}
}

func (r *memoryRepo) ListByCommunity(ctx context.Context, communityID int64, status maintenance.DueStatus) ([]maintenance.Due, error) {
	var out []maintenance.Due
	for _, d := range r.dues {
		if d.CommunityID == communityID && (status == "" || d.Status == status) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListByUnits(ctx context.Context, communityID int64, unitIDs []int64, status maintenance.DueStatus) ([]maintenance.Due, error) {
	allowed := make(map[int64]bool, len(unitIDs))
	for _, id := range unitIDs {
		allowed[id] = true
	}
	var out []maintenance.Due
	for _, d := range r.dues {
		if d.CommunityID == communityID && allowed[d.UnitID] && (status == "" || d.Status == status) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, communityID, id int64) (maintenance.Due, error) {
	d, ok := r.dues[id]
	if !ok || d.CommunityID != communityID {
		return maintenance.Due{}, maintenance.ErrNotFound
	}
	return d, nil
}

func (r *memoryRepo) Create(ctx context.Context, d maintenance.Due) (maintenance.Due, error) {
	r.nextID++
	d.ID = r.nextID
	d.Status = maintenance.DueUnpaid
	d.CreatedAt = time.Now()
	r.dues[d.ID] = d
	return d, nil
}

func (r *memoryRepo) MarkPaid(ctx context.Context, communityID, id int64, ref uuid.UUID, recordedBy int64, at time.Time) error {
	d, ok := r.dues[id]
	if !ok || d.CommunityID != communityID || d.Status != maintenance.DueUnpaid {
		return maintenance.ErrAlreadyPaid
	}
	d.Status = maintenance.DuePaid
	d.PaymentRef = ref
	d.RecordedBy = recordedBy
	d.PaidAt = &at
	r.dues[id] = d
	return nil
}

func (r *memoryRepo) ListDueWithin(ctx context.Context, from, until time.Time) ([]maintenance.Due, error) {
	var out []maintenance.Due
	for _, d := range r.dues {
		if d.Status == maintenance.DueUnpaid && !d.DueDate.Before(from) && d.DueDate.Before(until) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryRepo) SumUnpaid(ctx context.Context, communityID int64) (int64, error) {
	var total int64
	for _, d := range r.dues {
		if d.CommunityID == communityID && d.Status == maintenance.DueUnpaid {
			total += d.Amount
		}
	}
	return total, nil
}

type memoryKeys struct {
	seen map[string]bool
}

func newMemoryKeys() *memoryKeys {
	return &memoryKeys{seen: make(map[string]bool)}
}

func (k *memoryKeys) CheckAndInsert(ctx context.Context, key, module string) error {
	if k.seen[module+":"+key] {
		return shared.ErrIdempotencyConflict
	}
	k.seen[module+":"+key] = true
	return nil
}

func (k *memoryKeys) Delete(ctx context.Context, key string) error {
	delete(k.seen, "maintenance:"+key)
	return nil
}

var (
	admin = &access.Actor{UserID: 1, Role: access.RoleCommunityAdmin, CommunityID: 7,
		Units: []access.UnitRef{{ID: 9, Label: "P-001"}}}
	resident = &access.Actor{UserID: 10, Role: access.RoleResident, CommunityID: 7,
		Units: []access.UnitRef{{ID: 1, Label: "A-101"}}}
)

func issueDue(t *testing.T, service *maintenance.Service, unitID int64) maintenance.Due {
	t.Helper()
	due, err := service.Issue(context.Background(), admin, maintenance.Due{
		UnitID: unitID, Period: "2026-08", Amount: 350000, DueDate: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, maintenance.DueUnpaid, due.Status)
	return due
}

func TestIssueValidation(t *testing.T) {
	service := maintenance.NewService(newMemoryRepo(), newMemoryKeys())
	ctx := context.Background()

	_, err := service.Issue(ctx, resident, maintenance.Due{
		UnitID: 1, Period: "2026-08", Amount: 350000, DueDate: time.Now(),
	})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = service.Issue(ctx, admin, maintenance.Due{
		UnitID: 1, Period: "Agustus 2026", Amount: 350000, DueDate: time.Now(),
	})
	require.ErrorIs(t, err, maintenance.ErrBadPeriod)

	_, err = service.Issue(ctx, admin, maintenance.Due{
		UnitID: 1, Period: "2026-08", Amount: 0, DueDate: time.Now(),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestLedgerScoping(t *testing.T) {
	service := maintenance.NewService(newMemoryRepo(), newMemoryKeys())
	issueDue(t, service, 1)
	issueDue(t, service, 2)
	ctx := context.Background()

	all, err := service.ListFor(ctx, admin, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := service.ListFor(ctx, resident, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, int64(1), mine[0].UnitID)

	// A resident cannot read another unit's entry.
	foreign := all[0]
	if foreign.UnitID == 1 {
		foreign = all[1]
	}
	_, err = service.Get(ctx, resident, foreign.ID)
	require.ErrorIs(t, err, maintenance.ErrNotFound)
}

func TestStatusFilter(t *testing.T) {
	service := maintenance.NewService(newMemoryRepo(), newMemoryKeys())
	due := issueDue(t, service, 1)
	issueDue(t, service, 2)
	ctx := context.Background()

	_, err := service.RecordPayment(ctx, admin, due.ID, "key-1")
	require.NoError(t, err)

	unpaid, err := service.ListFor(ctx, admin, maintenance.DueUnpaid)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)

	paid, err := service.ListFor(ctx, admin, maintenance.DuePaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)

	_, err = service.ListFor(ctx, admin, maintenance.DueStatus("lunas"))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRecordPaymentIsIdempotent(t *testing.T) {
	service := maintenance.NewService(newMemoryRepo(), newMemoryKeys())
	due := issueDue(t, service, 1)
	ctx := context.Background()

	first, err := service.RecordPayment(ctx, admin, due.ID, "key-abc")
	require.NoError(t, err)
	require.Equal(t, maintenance.DuePaid, first.Status)
	require.NotEqual(t, uuid.Nil, first.PaymentRef)

	// Replaying the same key returns the settled entry, same reference.
	replay, err := service.RecordPayment(ctx, admin, due.ID, "key-abc")
	require.NoError(t, err)
	require.Equal(t, first.PaymentRef, replay.PaymentRef)

	// A fresh key against a settled entry is rejected.
	_, err = service.RecordPayment(ctx, admin, due.ID, "key-def")
	require.ErrorIs(t, err, maintenance.ErrAlreadyPaid)

	// Residents never record payments.
	_, err = service.RecordPayment(ctx, resident, due.ID, "key-ghi")
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDueSoonWindow(t *testing.T) {
	repo := newMemoryRepo()
	service := maintenance.NewService(repo, newMemoryKeys())
	ctx := context.Background()

	soon, err := service.Issue(ctx, admin, maintenance.Due{
		UnitID: 1, Period: "2026-08", Amount: 350000, DueDate: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = service.Issue(ctx, admin, maintenance.Due{
		UnitID: 2, Period: "2026-09", Amount: 350000, DueDate: time.Now().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	window, err := service.DueSoon(ctx, 3*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, soon.ID, window[0].ID)
}
