package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/directory"
	_ "github.com/communityhub/communityhub/testing"
)

type memoryRepo struct {
	entries []directory.Entry
}

func (r *memoryRepo) ListMembers(ctx context.Context, communityID int64, roles []access.Role) ([]directory.Entry, error) {
	allowed := make(map[access.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	var out []directory.Entry
	for _, e := range r.entries {
		if allowed[e.Role] {
			out = append(out, e)
		}
	}
	return out, nil
}

func seededRepo() *memoryRepo {
	return &memoryRepo{entries: []directory.Entry{
		{UserID: 1, Name: "Ibu Pengurus", Email: "pengurus@contoh.id", Role: access.RoleCommunityAdmin, Units: []string{"P-001"}},
		{UserID: 2, Name: "Budi Warga", Email: "budi@contoh.id", Role: access.RoleResident, Units: []string{"A-101"}},
		{UserID: 3, Name: "Citra Warga", Email: "citra@contoh.id", Role: access.RoleResident, Units: []string{"B-202"}},
		{UserID: 4, Name: "Dedi Penyewa", Email: "dedi@contoh.id", Role: access.RoleTenant, Units: []string{"A-101"}},
		{UserID: 5, Name: "Eka Satpam", Email: "eka@contoh.id", Role: access.RoleSecurityGuard},
		{UserID: 6, Name: "Fajar Koordinator", Email: "fajar@contoh.id", Role: access.RoleSecurityAdmin},
		{UserID: 7, Name: "Gita Bantuan", Email: "gita@contoh.id", Role: access.RoleHelpdeskAgent},
		{UserID: 8, Name: "Hana Koordinator", Email: "hana@contoh.id", Role: access.RoleHelpdeskAdmin},
	}}
}

func actorWith(role access.Role) *access.Actor {
	return &access.Actor{UserID: 99, Role: role, CommunityID: 7,
		Units: []access.UnitRef{{ID: 1, Label: "A-101"}}}
}

func rolesOf(entries []directory.Entry) []access.Role {
	out := make([]access.Role, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Role)
	}
	return out
}

func TestVisibilityPartition(t *testing.T) {
	service := directory.NewService(seededRepo())
	ctx := context.Background()

	// A resident sees fellow residents and the admin, never staff rosters.
	entries, err := service.List(ctx, actorWith(access.RoleResident), "")
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]access.Role{access.RoleCommunityAdmin, access.RoleResident, access.RoleResident},
		rolesOf(entries))

	// A security admin sees their own team only.
	entries, err = service.List(ctx, actorWith(access.RoleSecurityAdmin), "")
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]access.Role{access.RoleSecurityGuard, access.RoleSecurityAdmin},
		rolesOf(entries))

	// A guard gets nothing even though their coordinator can see them.
	entries, err = service.List(ctx, actorWith(access.RoleSecurityGuard), "")
	require.NoError(t, err)
	require.Empty(t, entries)

	// Same asymmetry on the helpdesk side.
	entries, err = service.List(ctx, actorWith(access.RoleHelpdeskAgent), "")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSearchRunsAfterPartition(t *testing.T) {
	service := directory.NewService(seededRepo())
	ctx := context.Background()

	// "koordinator" matches both coordinators, but a resident sees neither.
	entries, err := service.List(ctx, actorWith(access.RoleResident), "koordinator")
	require.NoError(t, err)
	require.Empty(t, entries)

	entries, err = service.List(ctx, actorWith(access.RoleHelpdeskAdmin), "koordinator")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Hana Koordinator", entries[0].Name)
}

func TestSearchFoldsCase(t *testing.T) {
	service := directory.NewService(seededRepo())
	ctx := context.Background()

	entries, err := service.List(ctx, actorWith(access.RoleResident), "  BUDI ")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Budi Warga", entries[0].Name)

	// Unit labels are searchable too.
	entries, err = service.List(ctx, actorWith(access.RoleResident), "b-202")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Citra Warga", entries[0].Name)

	// Email addresses match.
	entries, err = service.List(ctx, actorWith(access.RoleResident), "CITRA@")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestNilActorSeesNothing(t *testing.T) {
	service := directory.NewService(seededRepo())
	entries, err := service.List(context.Background(), nil, "")
	require.NoError(t, err)
	require.Empty(t, entries)
}
