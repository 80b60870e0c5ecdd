package visitors

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines visitor log persistence.
type Repository interface {
	ListByCommunity(ctx context.Context, communityID int64) ([]Visit, error)
	ListByHost(ctx context.Context, communityID, hostID int64) ([]Visit, error)
	Get(ctx context.Context, communityID, id int64) (Visit, error)
	FindByGatePass(ctx context.Context, communityID int64, pass string) (Visit, error)
	Create(ctx context.Context, v Visit) (Visit, error)
	UpdateStatus(ctx context.Context, communityID, id int64, status Status, note string, at time.Time) error
	CountExpectedOn(ctx context.Context, communityID int64, day time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const visitColumns = `id, community_id, unit_id, host_id, name, phone, purpose, gate_pass, expected_on, status, note, checked_in_at, checked_out_at, created_at`

func scanVisit(row pgx.Row) (Visit, error) {
	var v Visit
	var status string
	var in, out pgtype.Timestamptz
	if err := row.Scan(&v.ID, &v.CommunityID, &v.UnitID, &v.HostID, &v.Name, &v.Phone, &v.Purpose, &v.GatePass, &v.ExpectedOn, &status, &v.Note, &in, &out, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Visit{}, ErrNotFound
		}
		return Visit{}, err
	}
	v.Status = Status(status)
	if in.Valid {
		t := in.Time
		v.CheckedInAt = &t
	}
	if out.Valid {
		t := out.Time
		v.CheckedOutAt = &t
	}
	return v, nil
}

func (r *PGRepository) collect(ctx context.Context, query string, args ...any) ([]Visit, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepository) ListByCommunity(ctx context.Context, communityID int64) ([]Visit, error) {
	return r.collect(ctx, `SELECT `+visitColumns+` FROM visits WHERE community_id = $1
ORDER BY expected_on DESC, created_at DESC`, communityID)
}

func (r *PGRepository) ListByHost(ctx context.Context, communityID, hostID int64) ([]Visit, error) {
	return r.collect(ctx, `SELECT `+visitColumns+` FROM visits WHERE community_id = $1 AND host_id = $2
ORDER BY expected_on DESC, created_at DESC`, communityID, hostID)
}

func (r *PGRepository) Get(ctx context.Context, communityID, id int64) (Visit, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE community_id = $1 AND id = $2`, communityID, id)
	return scanVisit(row)
}

func (r *PGRepository) FindByGatePass(ctx context.Context, communityID int64, pass string) (Visit, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE community_id = $1 AND gate_pass = $2`, communityID, pass)
	visit, err := scanVisit(row)
	if errors.Is(err, ErrNotFound) {
		return Visit{}, ErrGatePassInvalid
	}
	return visit, err
}

func (r *PGRepository) Create(ctx context.Context, v Visit) (Visit, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO visits (community_id, unit_id, host_id, name, phone, purpose, gate_pass, expected_on, status, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', NOW()) RETURNING id, created_at`,
		v.CommunityID, v.UnitID, v.HostID, v.Name, v.Phone, v.Purpose, v.GatePass, v.ExpectedOn, string(v.Status)).
		Scan(&v.ID, &v.CreatedAt)
	return v, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, communityID, id int64, status Status, note string, at time.Time) error {
	query := `UPDATE visits SET status=$3, note=$4 WHERE community_id=$1 AND id=$2`
	args := []any{communityID, id, string(status), note}
	switch status {
	case StatusCheckedIn:
		query = `UPDATE visits SET status=$3, note=$4, checked_in_at=$5 WHERE community_id=$1 AND id=$2`
		args = append(args, at)
	case StatusCheckedOut:
		query = `UPDATE visits SET status=$3, note=$4, checked_out_at=$5 WHERE community_id=$1 AND id=$2`
		args = append(args, at)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) CountExpectedOn(ctx context.Context, communityID int64, day time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM visits WHERE community_id=$1 AND status='expected' AND expected_on::date = $2::date`, communityID, day).Scan(&count)
	return count, err
}

func (r *PGRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM visits WHERE created_at < $1 AND status IN ('checked_out','denied')`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
