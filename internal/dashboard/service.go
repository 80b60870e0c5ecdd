package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/communityhub/communityhub/internal/access"
)

// Tile is one dashboard summary card with a deep link into its page.
type Tile struct {
	Page  access.Page
	Label string
	Value string
	Link  string
	Err   bool
}

// NoticeCounter counts active announcements.
type NoticeCounter interface {
	CountActive(ctx context.Context, communityID int64) (int, error)
}

// TicketCounter counts unresolved help desk tickets.
type TicketCounter interface {
	CountOpen(ctx context.Context, communityID int64) (int, error)
}

// VisitCounter counts visitors expected today.
type VisitCounter interface {
	CountExpectedToday(ctx context.Context, communityID int64) (int, error)
}

// BookingCounter counts amenity bookings for today.
type BookingCounter interface {
	CountBookingsToday(ctx context.Context, communityID int64) (int, error)
}

// DuesTotaler sums outstanding maintenance dues.
type DuesTotaler interface {
	OutstandingTotal(ctx context.Context, communityID int64) (int64, error)
}

// ExpenseCounter counts expenses waiting for review.
type ExpenseCounter interface {
	CountSubmitted(ctx context.Context, communityID int64) (int, error)
}

// Service assembles the dashboard tiles an actor may see. Each tile loads
// concurrently and degrades on its own; one slow or failing source never
// blanks the whole page.
type Service struct {
	logger   *slog.Logger
	notices  NoticeCounter
	tickets  TicketCounter
	visits   VisitCounter
	bookings BookingCounter
	dues     DuesTotaler
	expenses ExpenseCounter
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, notices NoticeCounter, tickets TicketCounter, visits VisitCounter, bookings BookingCounter, dues DuesTotaler, expenses ExpenseCounter) *Service {
	return &Service{
		logger:   logger,
		notices:  notices,
		tickets:  tickets,
		visits:   visits,
		bookings: bookings,
		dues:     dues,
		expenses: expenses,
	}
}

type tileLoader struct {
	page  access.Page
	label string
	link  string
	load  func(ctx context.Context, communityID int64) (string, error)
}

func (s *Service) loaders() []tileLoader {
	return []tileLoader{
		{
			page:  access.PageNotices,
			label: "Pengumuman aktif",
			link:  access.PageNotices.Path(),
			load: func(ctx context.Context, communityID int64) (string, error) {
				n, err := s.notices.CountActive(ctx, communityID)
				return fmt.Sprintf("%d", n), err
			},
		},
		{
			page:  access.PageHelpdesk,
			label: "Tiket belum selesai",
			link:  access.PageHelpdesk.Path() + "?status=open",
			load: func(ctx context.Context, communityID int64) (string, error) {
				n, err := s.tickets.CountOpen(ctx, communityID)
				return fmt.Sprintf("%d", n), err
			},
		},
		{
			page:  access.PageVisitors,
			label: "Tamu hari ini",
			link:  access.PageVisitors.Path(),
			load: func(ctx context.Context, communityID int64) (string, error) {
				n, err := s.visits.CountExpectedToday(ctx, communityID)
				return fmt.Sprintf("%d", n), err
			},
		},
		{
			page:  access.PageAmenities,
			label: "Pemesanan fasilitas hari ini",
			link:  access.PageAmenities.Path(),
			load: func(ctx context.Context, communityID int64) (string, error) {
				n, err := s.bookings.CountBookingsToday(ctx, communityID)
				return fmt.Sprintf("%d", n), err
			},
		},
		{
			page:  access.PageMaintenance,
			label: "Iuran belum dibayar",
			link:  access.PageMaintenance.Path() + "?status=unpaid",
			load: func(ctx context.Context, communityID int64) (string, error) {
				total, err := s.dues.OutstandingTotal(ctx, communityID)
				return fmt.Sprintf("Rp %d", total), err
			},
		},
		{
			page:  access.PageExpenses,
			label: "Pengeluaran menunggu persetujuan",
			link:  access.PageExpenses.Path() + "?status=submitted",
			load: func(ctx context.Context, communityID int64) (string, error) {
				n, err := s.expenses.CountSubmitted(ctx, communityID)
				return fmt.Sprintf("%d", n), err
			},
		},
	}
}

// Tiles loads the dashboard cards for the actor. Tiles for pages outside the
// actor's grant are not computed at all.
func (s *Service) Tiles(ctx context.Context, actor *access.Actor) []Tile {
	if actor == nil {
		return nil
	}

	var visible []tileLoader
	for _, l := range s.loaders() {
		if access.Allowed(actor.Role).Allows(l.page) {
			visible = append(visible, l)
		}
	}
	if len(visible) == 0 {
		return nil
	}

	tiles := make([]Tile, len(visible))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range visible {
		i, l := i, l
		g.Go(func() error {
			value, err := l.load(gctx, actor.CommunityID)
			tile := Tile{Page: l.page, Label: l.label, Value: value, Link: l.link}
			if err != nil {
				s.logger.Warn("dashboard tile", slog.String("tile", string(l.page)), slog.Any("error", err))
				tile.Value = "-"
				tile.Err = true
			}
			tiles[i] = tile
			return nil
		})
	}
	_ = g.Wait()
	return tiles
}
