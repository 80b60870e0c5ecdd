package amenities

import (
	"errors"
	"time"
)

// Amenity is a shared facility residents can book.
type Amenity struct {
	ID          int64
	CommunityID int64
	Name        string
	Description string
	Capacity    int
	OpensAt     string // "HH:MM", community local time
	ClosesAt    string
	Active      bool
	CreatedAt   time.Time
}

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking reserves an amenity slot for a unit.
type Booking struct {
	ID          int64
	CommunityID int64
	AmenityID   int64
	UnitID      int64
	BookedBy    int64
	Date        time.Time
	StartsAt    string // "HH:MM"
	EndsAt      string
	Status      BookingStatus
	CreatedAt   time.Time
}

var (
	// ErrNotFound indicates the amenity or booking does not exist.
	ErrNotFound = errors.New("amenities: not found")
	// ErrOutsideHours indicates the slot falls outside the amenity's open hours.
	ErrOutsideHours = errors.New("amenities: slot outside open hours")
	// ErrInactive indicates the amenity is not accepting bookings.
	ErrInactive = errors.New("amenities: amenity inactive")
)
