package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/db"
)

type Repository interface {
	LeadCountsByStatus(ctx context.Context) (map[string]int, error)
	ActiveCustomerCount(ctx context.Context) (int, error)
	EmailsAwaitingReply(ctx context.Context) (int, error)
	ClearData(ctx context.Context) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) LeadCountsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *repository) ActiveCustomerCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active`).Scan(&count)
	return count, err
}

func (r *repository) EmailsAwaitingReply(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM communications WHERE channel = 'email' AND direction = 'outbound' AND status = 'sent'`,
	).Scan(&count)
	return count, err
}

// ClearData wipes operational data in one transaction. Users, sessions
// and audit logs survive.
func (r *repository) ClearData(ctx context.Context) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, query := range []string{
			`DELETE FROM communications`,
			`DELETE FROM leads`,
			`DELETE FROM customers`,
		} {
			if _, err := tx.Exec(ctx, query); err != nil {
				return err
			}
		}
		return nil
	})
}
