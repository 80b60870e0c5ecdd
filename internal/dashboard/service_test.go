package dashboard_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/dashboard"
	_ "github.com/communityhub/communityhub/testing"
)

type fakeCounts struct {
	notices  int
	tickets  int
	visits   int
	bookings int
	dues     int64
	expenses int

	ticketsErr error
}

func (f *fakeCounts) CountActive(ctx context.Context, communityID int64) (int, error) {
	return f.notices, nil
}

func (f *fakeCounts) CountOpen(ctx context.Context, communityID int64) (int, error) {
	return f.tickets, f.ticketsErr
}

func (f *fakeCounts) CountExpectedToday(ctx context.Context, communityID int64) (int, error) {
	return f.visits, nil
}

func (f *fakeCounts) CountBookingsToday(ctx context.Context, communityID int64) (int, error) {
	return f.bookings, nil
}

func (f *fakeCounts) OutstandingTotal(ctx context.Context, communityID int64) (int64, error) {
	return f.dues, nil
}

func (f *fakeCounts) CountSubmitted(ctx context.Context, communityID int64) (int, error) {
	return f.expenses, nil
}

func newService(f *fakeCounts) *dashboard.Service {
	return dashboard.NewService(slog.Default(), f, f, f, f, f, f)
}

func pagesOf(tiles []dashboard.Tile) []access.Page {
	out := make([]access.Page, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, t.Page)
	}
	return out
}

func TestTilesFollowGrant(t *testing.T) {
	service := newService(&fakeCounts{notices: 2, tickets: 3, visits: 1, bookings: 4, dues: 700000, expenses: 1})
	ctx := context.Background()

	admin := &access.Actor{UserID: 1, Role: access.RoleCommunityAdmin, CommunityID: 7,
		Units: []access.UnitRef{{ID: 9, Label: "P-001"}}}
	tiles := service.Tiles(ctx, admin)
	require.ElementsMatch(t, []access.Page{
		access.PageNotices, access.PageHelpdesk, access.PageVisitors,
		access.PageAmenities, access.PageMaintenance, access.PageExpenses,
	}, pagesOf(tiles))

	// A guard only gets the tiles of pages in their grant.
	guard := &access.Actor{UserID: 30, Role: access.RoleSecurityGuard, CommunityID: 7}
	tiles = service.Tiles(ctx, guard)
	require.ElementsMatch(t, []access.Page{access.PageNotices, access.PageVisitors}, pagesOf(tiles))

	require.Empty(t, service.Tiles(ctx, nil))
}

func TestTileValuesAndDeepLinks(t *testing.T) {
	service := newService(&fakeCounts{tickets: 5, dues: 350000})
	admin := &access.Actor{UserID: 1, Role: access.RoleCommunityAdmin, CommunityID: 7,
		Units: []access.UnitRef{{ID: 9, Label: "P-001"}}}

	tiles := service.Tiles(context.Background(), admin)
	byPage := map[access.Page]dashboard.Tile{}
	for _, tile := range tiles {
		byPage[tile.Page] = tile
	}

	require.Equal(t, "5", byPage[access.PageHelpdesk].Value)
	require.Equal(t, "/helpdesk?status=open", byPage[access.PageHelpdesk].Link)
	require.Equal(t, "Rp 350000", byPage[access.PageMaintenance].Value)
	require.Equal(t, "/maintenance?status=unpaid", byPage[access.PageMaintenance].Link)
}

func TestFailingTileDegradesAlone(t *testing.T) {
	service := newService(&fakeCounts{notices: 2, ticketsErr: errors.New("timeout")})
	admin := &access.Actor{UserID: 1, Role: access.RoleCommunityAdmin, CommunityID: 7,
		Units: []access.UnitRef{{ID: 9, Label: "P-001"}}}

	tiles := service.Tiles(context.Background(), admin)
	require.Len(t, tiles, 6)
	for _, tile := range tiles {
		if tile.Page == access.PageHelpdesk {
			require.True(t, tile.Err)
			require.Equal(t, "-", tile.Value)
			continue
		}
		require.False(t, tile.Err, "tile %s", tile.Page)
	}
}
