package helpdesk

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines ticket persistence.
type Repository interface {
	ListByCommunity(ctx context.Context, communityID int64) ([]Ticket, error)
	ListByReporter(ctx context.Context, communityID, reporterID int64) ([]Ticket, error)
	Get(ctx context.Context, communityID, id int64) (Ticket, error)
	Create(ctx context.Context, t Ticket) (Ticket, error)
	UpdateStatus(ctx context.Context, communityID, id int64, status Status) error
	UpdateAssignee(ctx context.Context, communityID, id int64, assigneeID *int64) error
	AddComment(ctx context.Context, c Comment) (Comment, error)
	ListComments(ctx context.Context, ticketID int64) ([]Comment, error)
	CountOpen(ctx context.Context, communityID int64) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const ticketColumns = `id, community_id, reporter_id, assignee_id, subject, description, category, priority, status, created_at, updated_at`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	var priority, status string
	var assignee pgtype.Int8
	if err := row.Scan(&t.ID, &t.CommunityID, &t.ReporterID, &assignee, &t.Subject, &t.Description, &t.Category, &priority, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, err
	}
	t.Priority = Priority(priority)
	t.Status = Status(status)
	if assignee.Valid {
		id := assignee.Int64
		t.AssigneeID = &id
	}
	return t, nil
}

func (r *PGRepository) collect(ctx context.Context, query string, args ...any) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepository) ListByCommunity(ctx context.Context, communityID int64) ([]Ticket, error) {
	return r.collect(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE community_id = $1
ORDER BY status = 'closed', created_at DESC`, communityID)
}

func (r *PGRepository) ListByReporter(ctx context.Context, communityID, reporterID int64) ([]Ticket, error) {
	return r.collect(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE community_id = $1 AND reporter_id = $2
ORDER BY created_at DESC`, communityID, reporterID)
}

func (r *PGRepository) Get(ctx context.Context, communityID, id int64) (Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE community_id = $1 AND id = $2`, communityID, id)
	return scanTicket(row)
}

func (r *PGRepository) Create(ctx context.Context, t Ticket) (Ticket, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO tickets (community_id, reporter_id, subject, description, category, priority, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		t.CommunityID, t.ReporterID, t.Subject, t.Description, t.Category, string(t.Priority), string(t.Status)).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, communityID, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tickets SET status=$3, updated_at=NOW() WHERE community_id=$1 AND id=$2`,
		communityID, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) UpdateAssignee(ctx context.Context, communityID, id int64, assigneeID *int64) error {
	var assignee pgtype.Int8
	if assigneeID != nil {
		assignee = pgtype.Int8{Int64: *assigneeID, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `UPDATE tickets SET assignee_id=$3, updated_at=NOW() WHERE community_id=$1 AND id=$2`,
		communityID, id, assignee)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) AddComment(ctx context.Context, c Comment) (Comment, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO ticket_comments (ticket_id, author_id, body, at)
VALUES ($1, $2, $3, NOW()) RETURNING id, at`,
		c.TicketID, c.AuthorID, c.Body).Scan(&c.ID, &c.At)
	return c, err
}

func (r *PGRepository) ListComments(ctx context.Context, ticketID int64) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, ticket_id, author_id, body, at
FROM ticket_comments WHERE ticket_id = $1 ORDER BY at ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.At); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepository) CountOpen(ctx context.Context, communityID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE community_id=$1 AND status IN ('open','in_progress')`, communityID).Scan(&count)
	return count, err
}

var _ Repository = (*PGRepository)(nil)
