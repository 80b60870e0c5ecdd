package directory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communityhub/communityhub/internal/access"
)

// Repository defines directory persistence.
type Repository interface {
	ListMembers(ctx context.Context, communityID int64, roles []access.Role) ([]Entry, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListMembers(ctx context.Context, communityID int64, roles []access.Role) ([]Entry, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	rows, err := r.pool.Query(ctx, `SELECT u.id, u.name, u.email, u.phone, u.role,
COALESCE(array_agg(un.label ORDER BY un.label) FILTER (WHERE un.id IS NOT NULL), '{}')
FROM users u
LEFT JOIN unit_assignments ua ON ua.user_id = u.id
LEFT JOIN units un ON un.id = ua.unit_id
WHERE u.community_id = $1 AND u.role = ANY($2) AND u.active
GROUP BY u.id, u.name, u.email, u.phone, u.role
ORDER BY u.name`, communityID, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var role string
		if err := rows.Scan(&e.UserID, &e.Name, &e.Email, &e.Phone, &role, &e.Units); err != nil {
			return nil, err
		}
		parsed, err := access.ParseRole(role)
		if err != nil {
			return nil, err
		}
		e.Role = parsed
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
