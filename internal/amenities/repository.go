package amenities

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines amenity and booking persistence.
type Repository interface {
	ListAmenities(ctx context.Context, communityID int64, includeInactive bool) ([]Amenity, error)
	GetAmenity(ctx context.Context, communityID, id int64) (Amenity, error)
	CreateAmenity(ctx context.Context, a Amenity) (Amenity, error)
	UpdateAmenity(ctx context.Context, a Amenity) error
	ListBookings(ctx context.Context, communityID int64, day time.Time) ([]Booking, error)
	ListBookingsByUser(ctx context.Context, communityID, userID int64) ([]Booking, error)
	GetBooking(ctx context.Context, communityID, id int64) (Booking, error)
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	CancelBooking(ctx context.Context, communityID, id int64) error
	CountBookingsOn(ctx context.Context, communityID int64, day time.Time) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const amenityColumns = `id, community_id, name, description, capacity, opens_at, closes_at, active, created_at`

func scanAmenity(row pgx.Row) (Amenity, error) {
	var a Amenity
	if err := row.Scan(&a.ID, &a.CommunityID, &a.Name, &a.Description, &a.Capacity, &a.OpensAt, &a.ClosesAt, &a.Active, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Amenity{}, ErrNotFound
		}
		return Amenity{}, err
	}
	return a, nil
}

func (r *PGRepository) ListAmenities(ctx context.Context, communityID int64, includeInactive bool) ([]Amenity, error) {
	query := `SELECT ` + amenityColumns + ` FROM amenities WHERE community_id = $1`
	if !includeInactive {
		query += ` AND active`
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Amenity
	for rows.Next() {
		a, err := scanAmenity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetAmenity(ctx context.Context, communityID, id int64) (Amenity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+amenityColumns+` FROM amenities WHERE community_id = $1 AND id = $2`, communityID, id)
	return scanAmenity(row)
}

func (r *PGRepository) CreateAmenity(ctx context.Context, a Amenity) (Amenity, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO amenities (community_id, name, description, capacity, opens_at, closes_at, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id, created_at`,
		a.CommunityID, a.Name, a.Description, a.Capacity, a.OpensAt, a.ClosesAt, a.Active).
		Scan(&a.ID, &a.CreatedAt)
	return a, err
}

func (r *PGRepository) UpdateAmenity(ctx context.Context, a Amenity) error {
	tag, err := r.pool.Exec(ctx, `UPDATE amenities SET name=$3, description=$4, capacity=$5, opens_at=$6, closes_at=$7, active=$8
WHERE community_id=$1 AND id=$2`,
		a.CommunityID, a.ID, a.Name, a.Description, a.Capacity, a.OpensAt, a.ClosesAt, a.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const bookingColumns = `id, community_id, amenity_id, unit_id, booked_by, date, starts_at, ends_at, status, created_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	var status string
	if err := row.Scan(&b.ID, &b.CommunityID, &b.AmenityID, &b.UnitID, &b.BookedBy, &b.Date, &b.StartsAt, &b.EndsAt, &status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	b.Status = BookingStatus(status)
	return b, nil
}

func (r *PGRepository) collectBookings(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PGRepository) ListBookings(ctx context.Context, communityID int64, day time.Time) ([]Booking, error) {
	return r.collectBookings(ctx, `SELECT `+bookingColumns+` FROM amenity_bookings
WHERE community_id = $1 AND date::date = $2::date ORDER BY starts_at`, communityID, day)
}

func (r *PGRepository) ListBookingsByUser(ctx context.Context, communityID, userID int64) ([]Booking, error) {
	return r.collectBookings(ctx, `SELECT `+bookingColumns+` FROM amenity_bookings
WHERE community_id = $1 AND booked_by = $2 ORDER BY date DESC, starts_at`, communityID, userID)
}

func (r *PGRepository) GetBooking(ctx context.Context, communityID, id int64) (Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM amenity_bookings WHERE community_id = $1 AND id = $2`, communityID, id)
	return scanBooking(row)
}

func (r *PGRepository) CreateBooking(ctx context.Context, b Booking) (Booking, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO amenity_bookings (community_id, amenity_id, unit_id, booked_by, date, starts_at, ends_at, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id, created_at`,
		b.CommunityID, b.AmenityID, b.UnitID, b.BookedBy, b.Date, b.StartsAt, b.EndsAt, string(b.Status)).
		Scan(&b.ID, &b.CreatedAt)
	return b, err
}

func (r *PGRepository) CancelBooking(ctx context.Context, communityID, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE amenity_bookings SET status='cancelled' WHERE community_id=$1 AND id=$2 AND status='booked'`, communityID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) CountBookingsOn(ctx context.Context, communityID int64, day time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM amenity_bookings WHERE community_id=$1 AND status='booked' AND date::date = $2::date`, communityID, day).Scan(&count)
	return count, err
}

var _ Repository = (*PGRepository)(nil)
