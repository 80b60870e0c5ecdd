package notices_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/notices"
	"github.com/communityhub/communityhub/internal/shared"
	_ "github.com/communityhub/communityhub/testing"
)

type memoryRepo struct {
	items  map[int64]notices.Notice
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]notices.Notice)}
}

func (r *memoryRepo) List(ctx context.Context, communityID int64, includeExpired bool, now time.Time) ([]notices.Notice, error) {
	var out []notices.Notice
	for _, n := range r.items {
		if n.CommunityID != communityID {
			continue
		}
		if !includeExpired && n.Expired(now) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, communityID, id int64) (notices.Notice, error) {
	n, ok := r.items[id]
	if !ok || n.CommunityID != communityID {
		return notices.Notice{}, notices.ErrNotFound
	}
	return n, nil
}

func (r *memoryRepo) Create(ctx context.Context, n notices.Notice) (notices.Notice, error) {
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.items[n.ID] = n
	return n, nil
}

func (r *memoryRepo) Update(ctx context.Context, n notices.Notice) error {
	old, ok := r.items[n.ID]
	if !ok || old.CommunityID != n.CommunityID {
		return notices.ErrNotFound
	}
	r.items[n.ID] = n
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, communityID, id int64) error {
	n, ok := r.items[id]
	if !ok || n.CommunityID != communityID {
		return notices.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepo) CountActive(ctx context.Context, communityID int64, now time.Time) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.CommunityID == communityID && !n.Expired(now) {
			count++
		}
	}
	return count, nil
}

func adminActor() *access.Actor {
	return &access.Actor{UserID: 1, Role: access.RoleCommunityAdmin, CommunityID: 7,
		Units: []access.UnitRef{{ID: 1, Label: "A-101"}}}
}

func residentActor() *access.Actor {
	return &access.Actor{UserID: 2, Role: access.RoleResident, CommunityID: 7,
		Units: []access.UnitRef{{ID: 2, Label: "A-102"}}}
}

func TestCreateRequiresCommunityAdmin(t *testing.T) {
	service := notices.NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := service.Create(ctx, residentActor(), notices.Notice{
		Title: "Kerja bakti", Body: "Minggu pagi", Category: notices.CategoryEvent,
	})
	require.ErrorIs(t, err, shared.ErrForbidden)

	created, err := service.Create(ctx, adminActor(), notices.Notice{
		Title: "Kerja bakti", Body: "Minggu pagi", Category: notices.CategoryEvent,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), created.CommunityID)
	require.Equal(t, int64(1), created.AuthorID)
}

func TestCreateValidatesCategoryAndExpiry(t *testing.T) {
	service := notices.NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := service.Create(ctx, adminActor(), notices.Notice{
		Title: "x", Body: "y", Category: "gossip",
	})
	require.ErrorIs(t, err, notices.ErrCategoryInvalid)

	past := time.Now().Add(-time.Hour)
	_, err = service.Create(ctx, adminActor(), notices.Notice{
		Title: "x", Body: "y", Category: notices.CategoryGeneral, ExpiresAt: &past,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestExpiredNoticesDropFromDefaultList(t *testing.T) {
	repo := newMemoryRepo()
	service := notices.NewService(repo)
	ctx := context.Background()

	future := time.Now().Add(24 * time.Hour)
	_, err := service.Create(ctx, adminActor(), notices.Notice{
		Title: "Pemadaman air", Body: "Besok", Category: notices.CategoryMaintenance, ExpiresAt: &future,
	})
	require.NoError(t, err)

	// Expire it directly in the store and check both views.
	for id, n := range repo.items {
		past := time.Now().Add(-time.Minute)
		n.ExpiresAt = &past
		repo.items[id] = n
	}

	active, err := service.List(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := service.ListAll(ctx, 7)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
