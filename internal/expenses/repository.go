package expenses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines expense persistence.
type Repository interface {
	ListByCommunity(ctx context.Context, communityID int64, status Status) ([]Expense, error)
	Get(ctx context.Context, communityID, id int64) (Expense, error)
	Create(ctx context.Context, e Expense) (Expense, error)
	Decide(ctx context.Context, communityID, id int64, status Status, note string) error
	CountSubmitted(ctx context.Context, communityID int64) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const expenseColumns = `id, ref, community_id, submitted_by, category, vendor, description, amount, incurred_at, receipt_ref, status, decision_note, created_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	var category, status string
	var ref uuid.UUID
	if err := row.Scan(&e.ID, &ref, &e.CommunityID, &e.SubmittedBy, &category, &e.Vendor, &e.Description, &e.Amount, &e.IncurredAt, &e.ReceiptRef, &status, &e.DecisionNote, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrNotFound
		}
		return Expense{}, err
	}
	e.Ref = ref
	e.Category = Category(category)
	e.Status = Status(status)
	return e, nil
}

func (r *PGRepository) ListByCommunity(ctx context.Context, communityID int64, status Status) ([]Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE community_id = $1`
	args := []any{communityID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, communityID, id int64) (Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE community_id = $1 AND id = $2`, communityID, id)
	return scanExpense(row)
}

func (r *PGRepository) Create(ctx context.Context, e Expense) (Expense, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (ref, community_id, submitted_by, category, vendor, description, amount, incurred_at, receipt_ref, status, decision_note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '', NOW()) RETURNING id, created_at`,
		e.Ref, e.CommunityID, e.SubmittedBy, string(e.Category), e.Vendor, e.Description, e.Amount, e.IncurredAt, e.ReceiptRef, string(e.Status)).
		Scan(&e.ID, &e.CreatedAt)
	return e, err
}

func (r *PGRepository) Decide(ctx context.Context, communityID, id int64, status Status, note string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET status=$3, decision_note=$4
WHERE community_id=$1 AND id=$2 AND status='submitted'`, communityID, id, string(status), note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (r *PGRepository) CountSubmitted(ctx context.Context, communityID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE community_id=$1 AND status='submitted'`, communityID).Scan(&count)
	return count, err
}

var _ Repository = (*PGRepository)(nil)
