package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines subscription persistence.
type Repository interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ListInvoices(ctx context.Context, communityID int64) ([]Invoice, error)
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	MarkPaid(ctx context.Context, id int64, at time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.id, c.name, COALESCE(s.plan, 'trial'), COALESCE(s.active, true),
(SELECT COUNT(*) FROM units un WHERE un.community_id = c.id),
COALESCE((SELECT SUM(i.amount) FROM subscription_invoices i WHERE i.community_id = c.id AND i.status = 'open'), 0)
FROM communities c
LEFT JOIN subscriptions s ON s.community_id = c.id
ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		var plan string
		if err := rows.Scan(&a.CommunityID, &a.Name, &plan, &a.Active, &a.UnitCount, &a.OpenAmount); err != nil {
			return nil, err
		}
		a.Plan = Plan(plan)
		out = append(out, a)
	}
	return out, rows.Err()
}

const invoiceColumns = `id, community_id, period, amount, status, paid_at, created_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var i Invoice
	var status string
	var paidAt pgtype.Timestamptz
	if err := row.Scan(&i.ID, &i.CommunityID, &i.Period, &i.Amount, &status, &paidAt, &i.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	i.Status = InvoiceStatus(status)
	if paidAt.Valid {
		t := paidAt.Time
		i.PaidAt = &t
	}
	return i, nil
}

func (r *PGRepository) ListInvoices(ctx context.Context, communityID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM subscription_invoices
WHERE community_id = $1 ORDER BY period DESC`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM subscription_invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

func (r *PGRepository) MarkPaid(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE subscription_invoices SET status='paid', paid_at=$2 WHERE id=$1 AND status='open'`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoicePaid
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
