package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines dues ledger persistence.
type Repository interface {
	ListByCommunity(ctx context.Context, communityID int64, status DueStatus) ([]Due, error)
	ListByUnits(ctx context.Context, communityID int64, unitIDs []int64, status DueStatus) ([]Due, error)
	Get(ctx context.Context, communityID, id int64) (Due, error)
	Create(ctx context.Context, d Due) (Due, error)
	MarkPaid(ctx context.Context, communityID, id int64, ref uuid.UUID, recordedBy int64, at time.Time) error
	ListDueWithin(ctx context.Context, from, until time.Time) ([]Due, error)
	SumUnpaid(ctx context.Context, communityID int64) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const dueColumns = `d.id, d.community_id, d.unit_id, u.label, d.period, d.amount, d.due_date, d.status, d.paid_at, d.payment_ref, d.recorded_by, d.created_at`

func scanDue(row pgx.Row) (Due, error) {
	var d Due
	var status string
	var paidAt pgtype.Timestamptz
	var ref pgtype.UUID
	if err := row.Scan(&d.ID, &d.CommunityID, &d.UnitID, &d.UnitLabel, &d.Period, &d.Amount, &d.DueDate, &status, &paidAt, &ref, &d.RecordedBy, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Due{}, ErrNotFound
		}
		return Due{}, err
	}
	d.Status = DueStatus(status)
	if paidAt.Valid {
		t := paidAt.Time
		d.PaidAt = &t
	}
	if ref.Valid {
		d.PaymentRef = uuid.UUID(ref.Bytes)
	}
	return d, nil
}

func (r *PGRepository) collect(ctx context.Context, query string, args ...any) ([]Due, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Due
	for rows.Next() {
		d, err := scanDue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const dueBase = `SELECT ` + dueColumns + ` FROM maintenance_dues d JOIN units u ON u.id = d.unit_id`

func (r *PGRepository) ListByCommunity(ctx context.Context, communityID int64, status DueStatus) ([]Due, error) {
	query := dueBase + ` WHERE d.community_id = $1`
	args := []any{communityID}
	if status != "" {
		query += ` AND d.status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY d.due_date DESC, u.label`
	return r.collect(ctx, query, args...)
}

func (r *PGRepository) ListByUnits(ctx context.Context, communityID int64, unitIDs []int64, status DueStatus) ([]Due, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	query := dueBase + ` WHERE d.community_id = $1 AND d.unit_id = ANY($2)`
	args := []any{communityID, unitIDs}
	if status != "" {
		query += ` AND d.status = $3`
		args = append(args, string(status))
	}
	query += ` ORDER BY d.due_date DESC`
	return r.collect(ctx, query, args...)
}

func (r *PGRepository) Get(ctx context.Context, communityID, id int64) (Due, error) {
	row := r.pool.QueryRow(ctx, dueBase+` WHERE d.community_id = $1 AND d.id = $2`, communityID, id)
	return scanDue(row)
}

func (r *PGRepository) Create(ctx context.Context, d Due) (Due, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO maintenance_dues (community_id, unit_id, period, amount, due_date, status, created_at)
VALUES ($1, $2, $3, $4, $5, 'unpaid', NOW()) RETURNING id, created_at`,
		d.CommunityID, d.UnitID, d.Period, d.Amount, d.DueDate).
		Scan(&d.ID, &d.CreatedAt)
	d.Status = DueUnpaid
	return d, err
}

func (r *PGRepository) MarkPaid(ctx context.Context, communityID, id int64, ref uuid.UUID, recordedBy int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE maintenance_dues SET status='paid', payment_ref=$3, recorded_by=$4, paid_at=$5
WHERE community_id=$1 AND id=$2 AND status='unpaid'`, communityID, id, ref, recordedBy, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

func (r *PGRepository) ListDueWithin(ctx context.Context, from, until time.Time) ([]Due, error) {
	return r.collect(ctx, dueBase+` WHERE d.status = 'unpaid' AND d.due_date >= $1 AND d.due_date < $2 ORDER BY d.due_date`, from, until)
}

func (r *PGRepository) SumUnpaid(ctx context.Context, communityID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM maintenance_dues WHERE community_id=$1 AND status='unpaid'`, communityID).Scan(&total)
	return total, err
}

var _ Repository = (*PGRepository)(nil)
