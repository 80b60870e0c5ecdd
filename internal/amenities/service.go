package amenities

import (
	"context"
	"strings"
	"time"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps amenity catalogue and booking rules. The catalogue is
// admin-managed; any member with amenity access may book an active amenity
// for one of their units.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func isCatalogueAdmin(actor *access.Actor) bool {
	return actor != nil && actor.Role == access.RoleCommunityAdmin
}

// parseClock accepts "HH:MM" and returns minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// ListAmenities returns the catalogue. Admins also see inactive entries.
func (s *Service) ListAmenities(ctx context.Context, actor *access.Actor) ([]Amenity, error) {
	return s.repo.ListAmenities(ctx, actor.CommunityID, isCatalogueAdmin(actor))
}

// SaveAmenity creates or updates a catalogue entry. Admin only.
func (s *Service) SaveAmenity(ctx context.Context, actor *access.Actor, a Amenity) (Amenity, error) {
	if !isCatalogueAdmin(actor) {
		return Amenity{}, shared.ErrForbidden
	}
	a.Name = strings.TrimSpace(a.Name)
	a.Description = strings.TrimSpace(a.Description)
	if a.Name == "" || a.Capacity < 1 {
		return Amenity{}, shared.ErrValidation
	}
	opens, okOpen := parseClock(a.OpensAt)
	closes, okClose := parseClock(a.ClosesAt)
	if !okOpen || !okClose || opens >= closes {
		return Amenity{}, shared.ErrValidation
	}
	a.CommunityID = actor.CommunityID
	if a.ID == 0 {
		return s.repo.CreateAmenity(ctx, a)
	}
	return a, s.repo.UpdateAmenity(ctx, a)
}

// Book reserves a slot. The slot must sit inside the amenity's open hours;
// overlapping bookings are left to the front desk to arbitrate.
func (s *Service) Book(ctx context.Context, actor *access.Actor, b Booking) (Booking, error) {
	if !hasUnit(actor, b.UnitID) {
		return Booking{}, shared.ErrForbidden
	}
	if b.Date.IsZero() || b.Date.Before(s.now().Truncate(24*time.Hour)) {
		return Booking{}, shared.ErrValidation
	}
	start, okStart := parseClock(b.StartsAt)
	end, okEnd := parseClock(b.EndsAt)
	if !okStart || !okEnd || start >= end {
		return Booking{}, shared.ErrValidation
	}

	amenity, err := s.repo.GetAmenity(ctx, actor.CommunityID, b.AmenityID)
	if err != nil {
		return Booking{}, err
	}
	if !amenity.Active {
		return Booking{}, ErrInactive
	}
	opens, _ := parseClock(amenity.OpensAt)
	closes, _ := parseClock(amenity.ClosesAt)
	if start < opens || end > closes {
		return Booking{}, ErrOutsideHours
	}

	b.CommunityID = actor.CommunityID
	b.BookedBy = actor.UserID
	b.Status = BookingBooked
	return s.repo.CreateBooking(ctx, b)
}

func hasUnit(actor *access.Actor, unitID int64) bool {
	if actor == nil {
		return false
	}
	for _, u := range actor.Units {
		if u.ID == unitID {
			return true
		}
	}
	return false
}

// Cancel voids a booking. Owners cancel their own; the admin cancels any.
func (s *Service) Cancel(ctx context.Context, actor *access.Actor, id int64) error {
	booking, err := s.repo.GetBooking(ctx, actor.CommunityID, id)
	if err != nil {
		return err
	}
	if booking.BookedBy != actor.UserID && !isCatalogueAdmin(actor) {
		return shared.ErrForbidden
	}
	return s.repo.CancelBooking(ctx, actor.CommunityID, id)
}

// MyBookings lists the actor's bookings, newest first.
func (s *Service) MyBookings(ctx context.Context, actor *access.Actor) ([]Booking, error) {
	return s.repo.ListBookingsByUser(ctx, actor.CommunityID, actor.UserID)
}

// BookingsOn lists all bookings for a day, for the schedule view.
func (s *Service) BookingsOn(ctx context.Context, actor *access.Actor, day time.Time) ([]Booking, error) {
	return s.repo.ListBookings(ctx, actor.CommunityID, day)
}

// CountBookingsToday supports the dashboard tile.
func (s *Service) CountBookingsToday(ctx context.Context, communityID int64) (int, error) {
	return s.repo.CountBookingsOn(ctx, communityID, s.now())
}
