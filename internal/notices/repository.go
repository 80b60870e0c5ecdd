package notices

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines notice persistence.
type Repository interface {
	List(ctx context.Context, communityID int64, includeExpired bool, now time.Time) ([]Notice, error)
	Get(ctx context.Context, communityID, id int64) (Notice, error)
	Create(ctx context.Context, n Notice) (Notice, error)
	Update(ctx context.Context, n Notice) error
	Delete(ctx context.Context, communityID, id int64) error
	CountActive(ctx context.Context, communityID int64, now time.Time) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const noticeColumns = `id, community_id, author_id, title, body, category, pinned, expires_at, created_at, updated_at`

func scanNotice(row pgx.Row) (Notice, error) {
	var n Notice
	var category string
	var expires pgtype.Timestamptz
	if err := row.Scan(&n.ID, &n.CommunityID, &n.AuthorID, &n.Title, &n.Body, &category, &n.Pinned, &expires, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notice{}, ErrNotFound
		}
		return Notice{}, err
	}
	n.Category = Category(category)
	if expires.Valid {
		t := expires.Time
		n.ExpiresAt = &t
	}
	return n, nil
}

// List returns community notices, pinned first then newest.
func (r *PGRepository) List(ctx context.Context, communityID int64, includeExpired bool, now time.Time) ([]Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE community_id = $1`
	args := []any{communityID}
	if !includeExpired {
		query += ` AND (expires_at IS NULL OR expires_at >= $2)`
		args = append(args, now)
	}
	query += ` ORDER BY pinned DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, communityID, id int64) (Notice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noticeColumns+` FROM notices WHERE community_id = $1 AND id = $2`, communityID, id)
	return scanNotice(row)
}

func (r *PGRepository) Create(ctx context.Context, n Notice) (Notice, error) {
	var expires pgtype.Timestamptz
	if n.ExpiresAt != nil {
		expires = pgtype.Timestamptz{Time: *n.ExpiresAt, Valid: true}
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO notices (community_id, author_id, title, body, category, pinned, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		n.CommunityID, n.AuthorID, n.Title, n.Body, string(n.Category), n.Pinned, expires).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *PGRepository) Update(ctx context.Context, n Notice) error {
	var expires pgtype.Timestamptz
	if n.ExpiresAt != nil {
		expires = pgtype.Timestamptz{Time: *n.ExpiresAt, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `UPDATE notices SET title=$3, body=$4, category=$5, pinned=$6, expires_at=$7, updated_at=NOW()
WHERE community_id=$1 AND id=$2`,
		n.CommunityID, n.ID, n.Title, n.Body, string(n.Category), n.Pinned, expires)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, communityID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notices WHERE community_id=$1 AND id=$2`, communityID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) CountActive(ctx context.Context, communityID int64, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notices WHERE community_id=$1 AND (expires_at IS NULL OR expires_at >= $2)`, communityID, now).Scan(&count)
	return count, err
}

var _ Repository = (*PGRepository)(nil)
