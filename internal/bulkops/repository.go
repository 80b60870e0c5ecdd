package bulkops

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines invite persistence and duplicate checks.
type Repository interface {
	ExistingEmails(ctx context.Context, communityID int64, emails []string) (map[string]bool, error)
	UnitIDs(ctx context.Context, communityID int64) (map[int64]bool, error)
	CreateInvite(ctx context.Context, inv Invite) (Invite, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ExistingEmails reports which of the given emails already belong to a user
// or a pending invite in the community.
func (r *PGRepository) ExistingEmails(ctx context.Context, communityID int64, emails []string) (map[string]bool, error) {
	out := make(map[string]bool, len(emails))
	if len(emails) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT email FROM users WHERE email = ANY($1)
UNION SELECT email FROM invites WHERE community_id = $2 AND email = ANY($1)`, emails, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out[email] = true
	}
	return out, rows.Err()
}

func (r *PGRepository) UnitIDs(ctx context.Context, communityID int64) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM units WHERE community_id = $1`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *PGRepository) CreateInvite(ctx context.Context, inv Invite) (Invite, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO invites (community_id, email, name, role, unit_id, token, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6, NOW()) RETURNING id, created_at`,
		inv.CommunityID, inv.Email, inv.Name, inv.Role, inv.UnitID, inv.Token).
		Scan(&inv.ID, &inv.CreatedAt)
	return inv, err
}

var _ Repository = (*PGRepository)(nil)
