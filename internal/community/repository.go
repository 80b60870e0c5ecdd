package community

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communityhub/communityhub/internal/shared"
)

// Repository defines persistence for communities, units and assignments.
type Repository interface {
	CreateCommunity(ctx context.Context, c Community) (Community, error)
	GetCommunity(ctx context.Context, id int64) (Community, error)
	FindByJoinCode(ctx context.Context, code string) (Community, error)

	CreateUnit(ctx context.Context, u Unit) (Unit, error)
	GetUnit(ctx context.Context, id int64) (Unit, error)
	ListUnits(ctx context.Context, communityID int64) ([]Unit, error)

	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	CountAssignmentsByUser(ctx context.Context, userID int64) (int, error)
	CountOwnerAssignmentsByUnit(ctx context.Context, unitID int64) (int, error)

	SetUserCommunity(ctx context.Context, userID, communityID int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CreateCommunity(ctx context.Context, c Community) (Community, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO communities (name, join_code, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id, created_at, updated_at`,
		c.Name, c.JoinCode, c.Address, now).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PGRepository) GetCommunity(ctx context.Context, id int64) (Community, error) {
	var c Community
	err := r.pool.QueryRow(ctx, `SELECT id, name, join_code, address, created_at, updated_at
FROM communities WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.JoinCode, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Community{}, shared.ErrNotFound
	}
	return c, err
}

func (r *PGRepository) FindByJoinCode(ctx context.Context, code string) (Community, error) {
	var c Community
	err := r.pool.QueryRow(ctx, `SELECT id, name, join_code, address, created_at, updated_at
FROM communities WHERE join_code = $1`, code).Scan(&c.ID, &c.Name, &c.JoinCode, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Community{}, ErrJoinCodeInvalid
	}
	return c, err
}

func (r *PGRepository) CreateUnit(ctx context.Context, u Unit) (Unit, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO units (community_id, tower, number, created_at)
VALUES ($1, $2, $3, NOW()) RETURNING id, created_at`,
		u.CommunityID, u.Tower, u.Number).Scan(&u.ID, &u.CreatedAt)
	return u, err
}

func (r *PGRepository) GetUnit(ctx context.Context, id int64) (Unit, error) {
	var u Unit
	err := r.pool.QueryRow(ctx, `SELECT id, community_id, tower, number, created_at
FROM units WHERE id = $1`, id).Scan(&u.ID, &u.CommunityID, &u.Tower, &u.Number, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, ErrUnitNotFound
	}
	return u, err
}

func (r *PGRepository) ListUnits(ctx context.Context, communityID int64) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, community_id, tower, number, created_at
FROM units WHERE community_id = $1 ORDER BY tower, number`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.CommunityID, &u.Tower, &u.Number, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *PGRepository) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO unit_assignments (unit_id, user_id, occupancy, assigned_at)
VALUES ($1, $2, $3, NOW()) RETURNING id, assigned_at`,
		a.UnitID, a.UserID, string(a.Occupancy)).Scan(&a.ID, &a.AssignedAt)
	return a, err
}

func (r *PGRepository) CountAssignmentsByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM unit_assignments WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (r *PGRepository) CountOwnerAssignmentsByUnit(ctx context.Context, unitID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM unit_assignments WHERE unit_id = $1 AND occupancy = 'owner'`, unitID).Scan(&count)
	return count, err
}

func (r *PGRepository) SetUserCommunity(ctx context.Context, userID, communityID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET community_id = $2, updated_at = NOW() WHERE id = $1`, userID, communityID)
	return err
}

var _ Repository = (*PGRepository)(nil)
