package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/community"
	"github.com/communityhub/communityhub/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ListUnitAssignments(ctx context.Context, userID int64) ([]access.UnitRef, error)
	FindInviteByToken(ctx context.Context, token string) (*Invite, error)
	AcceptInvite(ctx context.Context, inv *Invite, passwordHash string) (int64, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, COALESCE(community_id, 0), is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CommunityID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	parsed, err := access.ParseRole(role)
	if err != nil {
		// The role column carries a CHECK constraint, so this only fires on
		// schema drift. Reject at the boundary rather than letting an
		// unknown role reach the resolver.
		return nil, err
	}
	u.Role = parsed
	return &u, nil
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ListUnitAssignments returns the ordered unit assignments for a user.
func (r *PGRepository) ListUnitAssignments(ctx context.Context, userID int64) ([]access.UnitRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT u.id, u.tower || '-' || u.number
FROM unit_assignments ua
JOIN units u ON u.id = ua.unit_id
WHERE ua.user_id = $1
ORDER BY ua.assigned_at ASC, u.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var units []access.UnitRef
	for rows.Next() {
		var unit access.UnitRef
		if err := rows.Scan(&unit.ID, &unit.Label); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// FindInviteByToken returns the pending invite for a token. Accepted invites
// behave like missing ones so tokens cannot be replayed.
func (r *PGRepository) FindInviteByToken(ctx context.Context, token string) (*Invite, error) {
	var inv Invite
	var role string
	err := r.pool.QueryRow(ctx, `SELECT id, community_id, email, name, role, COALESCE(unit_id, 0), token
FROM invites WHERE token = $1 AND accepted_at IS NULL`, token).
		Scan(&inv.ID, &inv.CommunityID, &inv.Email, &inv.Name, &role, &inv.UnitID, &inv.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	parsed, err := access.ParseRole(role)
	if err != nil {
		return nil, err
	}
	inv.Role = parsed
	return &inv, nil
}

// occupancyForRole maps an invited role to the occupancy recorded on its unit
// assignment, using the community enum so both write paths agree.
func occupancyForRole(role access.Role) community.Occupancy {
	if role == access.RoleTenant {
		return community.OccupancyTenant
	}
	return community.OccupancyOwner
}

// AcceptInvite activates the invited account in a single transaction: the user
// row, the unit assignment when the invite carries one, and the accepted mark.
func (r *PGRepository) AcceptInvite(ctx context.Context, inv *Invite, passwordHash string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, role, community_id, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW()) RETURNING id`,
		inv.Name, inv.Email, passwordHash, string(inv.Role), inv.CommunityID).Scan(&userID)
	if err != nil {
		return 0, err
	}
	if inv.UnitID != 0 {
		if _, err := tx.Exec(ctx, `INSERT INTO unit_assignments (unit_id, user_id, occupancy, assigned_at)
VALUES ($1, $2, $3, NOW())`, inv.UnitID, userID, string(occupancyForRole(inv.Role))); err != nil {
			return 0, err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE invites SET accepted_at = NOW() WHERE id = $1`, inv.ID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return userID, nil
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userID,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: expiresAt.UTC(), Valid: true},
		pgtype.Text{String: ip, Valid: ip != ""},
		pgtype.Text{String: ua, Valid: ua != ""})
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
