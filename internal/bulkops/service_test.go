package bulkops_test

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/bulkops"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/jobs"
	_ "github.com/communityhub/communityhub/testing"
)

type memoryRepo struct {
	emails  map[string]bool
	units   map[int64]bool
	invites []bulkops.Invite
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		emails: map[string]bool{"sudah@contoh.id": true},
		units:  map[int64]bool{1: true, 2: true},
	}
}

func (r *memoryRepo) ExistingEmails(ctx context.Context, communityID int64, emails []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, e := range emails {
		if r.emails[e] {
			out[e] = true
		}
	}
	return out, nil
}

func (r *memoryRepo) UnitIDs(ctx context.Context, communityID int64) (map[int64]bool, error) {
	return r.units, nil
}

func (r *memoryRepo) CreateInvite(ctx context.Context, inv bulkops.Invite) (bulkops.Invite, error) {
	r.nextID++
	inv.ID = r.nextID
	inv.CreatedAt = time.Now()
	r.invites = append(r.invites, inv)
	return inv, nil
}

type fakeLock struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLock) Acquire(ctx context.Context, key string) error {
	if l.held {
		return shared.ErrLockHeld
	}
	l.held = true
	l.acquired++
	return nil
}

func (l *fakeLock) Release(ctx context.Context, key string) error {
	l.held = false
	l.released++
	return nil
}

type fakeQueue struct {
	payloads []jobs.InviteMailPayload
}

func (q *fakeQueue) EnqueueInviteMail(ctx context.Context, payload jobs.InviteMailPayload) (*asynq.TaskInfo, error) {
	q.payloads = append(q.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

var admin = &access.Actor{UserID: 1, Role: access.RoleCommunityAdmin, CommunityID: 7,
	Units: []access.UnitRef{{ID: 9, Label: "P-001"}}}

func TestRunRequiresAdmin(t *testing.T) {
	service := bulkops.NewService(newMemoryRepo(), &fakeLock{}, &fakeQueue{}, "http://localhost:8080")
	resident := &access.Actor{UserID: 10, Role: access.RoleResident, CommunityID: 7,
		Units: []access.UnitRef{{ID: 1, Label: "A-101"}}}

	_, err := service.Run(context.Background(), resident, "Griya Asri", []bulkops.Row{
		{Name: "Budi", Email: "budi@contoh.id", Role: "resident", UnitID: 1},
	})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestRunClassifiesRows(t *testing.T) {
	repo := newMemoryRepo()
	queue := &fakeQueue{}
	service := bulkops.NewService(repo, &fakeLock{}, queue, "http://localhost:8080")

	summary, err := service.Run(context.Background(), admin, "Griya Asri", []bulkops.Row{
		{Name: "Budi Santoso", Email: "budi@contoh.id", Role: "resident", UnitID: 1},
		{Name: "Citra Dewi", Email: "SUDAH@contoh.id", Role: "resident", UnitID: 2},  // existing user
		{Name: "Dedi Rahman", Email: "budi@contoh.id", Role: "tenant", UnitID: 1},   // duplicate in batch
		{Name: "Eka Putra", Email: "eka@contoh.id", Role: "resident", UnitID: 99},   // unknown unit
		{Name: "Fajar Hakim", Email: "fajar@contoh.id", Role: "super_admin"},        // role not invitable
		{Name: "G", Email: "bukan-email", Role: "resident", UnitID: 1},              // fails validation
		{Name: "Hana Lestari", Email: "hana@contoh.id", Role: "security_guard"},     // staff, no unit needed
	})
	require.NoError(t, err)

	require.Equal(t, 2, summary.Invited)
	require.Equal(t, 2, summary.Skipped)
	require.Equal(t, 3, summary.Invalid)
	require.Len(t, summary.Results, 7)

	require.Len(t, repo.invites, 2)
	require.Len(t, queue.payloads, 2)
	require.NotEmpty(t, repo.invites[0].Token)
	require.NotEqual(t, repo.invites[0].Token, repo.invites[1].Token)

	// Emails are normalized to lower case before duplicate checks.
	require.Equal(t, "budi@contoh.id", repo.invites[0].Email)
}

func TestRunSerializedPerCommunity(t *testing.T) {
	lock := &fakeLock{held: true}
	service := bulkops.NewService(newMemoryRepo(), lock, &fakeQueue{}, "http://localhost:8080")

	_, err := service.Run(context.Background(), admin, "Griya Asri", []bulkops.Row{
		{Name: "Budi Santoso", Email: "budi@contoh.id", Role: "resident", UnitID: 1},
	})
	require.ErrorIs(t, err, bulkops.ErrRunInProgress)
}

func TestLockReleasedAfterRun(t *testing.T) {
	lock := &fakeLock{}
	service := bulkops.NewService(newMemoryRepo(), lock, &fakeQueue{}, "http://localhost:8080")

	_, err := service.Run(context.Background(), admin, "Griya Asri", []bulkops.Row{
		{Name: "Budi Santoso", Email: "budi@contoh.id", Role: "resident", UnitID: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 1, lock.acquired)
	require.Equal(t, 1, lock.released)
	require.False(t, lock.held)
}

func TestEmptyBatchRejected(t *testing.T) {
	service := bulkops.NewService(newMemoryRepo(), &fakeLock{}, &fakeQueue{}, "http://localhost:8080")
	_, err := service.Run(context.Background(), admin, "Griya Asri", nil)
	require.ErrorIs(t, err, bulkops.ErrEmptyBatch)
}
