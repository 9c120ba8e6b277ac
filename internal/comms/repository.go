package comms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Communication, error)
	List(ctx context.Context, req ListCommunicationsRequest) ([]Communication, int, error)
	Create(ctx context.Context, comm Communication) (int64, error)
	MarkReplied(ctx context.Context, id int64, repliedAt time.Time) error
	CountAwaitingReply(ctx context.Context) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const commColumns = `id, lead_id, customer_id, channel, direction, subject, body, status, sent_at, replied_at, created_by`

func (r *repository) Get(ctx context.Context, id int64) (*Communication, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+commColumns+` FROM communications WHERE id = $1`, id)
	comm, err := scanCommunication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("communication %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return comm, nil
}

func (r *repository) List(ctx context.Context, req ListCommunicationsRequest) ([]Communication, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.LeadID != nil {
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", argPos))
		args = append(args, *req.LeadID)
		argPos++
	}
	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM communications %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+commColumns+` FROM communications %s ORDER BY sent_at DESC, id DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var comms []Communication
	for rows.Next() {
		comm, err := scanCommunication(rows)
		if err != nil {
			return nil, 0, err
		}
		comms = append(comms, *comm)
	}
	return comms, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, comm Communication) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO communications (lead_id, customer_id, channel, direction, subject, body, status, sent_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		comm.LeadID, comm.CustomerID, comm.Channel, comm.Direction, comm.Subject,
		textOrNull(comm.Body), comm.Status,
		pgtype.Timestamptz{Time: comm.SentAt.UTC(), Valid: true},
		comm.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// MarkReplied flips an outbound email to replied. Only rows still in
// the sent state match; replying twice is a no-op at the store level.
func (r *repository) MarkReplied(ctx context.Context, id int64, repliedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE communications SET status = $1, replied_at = $2 WHERE id = $3 AND status = $4`,
		StatusReplied, pgtype.Timestamptz{Time: repliedAt.UTC(), Valid: true}, id, StatusSent,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("communication %d not awaiting reply: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) CountAwaitingReply(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM communications WHERE channel = $1 AND direction = $2 AND status = $3`,
		ChannelEmail, DirectionOutbound, StatusSent,
	).Scan(&count)
	return count, err
}

func scanCommunication(row pgx.Row) (*Communication, error) {
	var (
		comm               Communication
		leadID, customerID pgtype.Int8
		body               pgtype.Text
		sentAt, repliedAt  pgtype.Timestamptz
	)
	err := row.Scan(&comm.ID, &leadID, &customerID, &comm.Channel, &comm.Direction, &comm.Subject, &body, &comm.Status, &sentAt, &repliedAt, &comm.CreatedBy)
	if err != nil {
		return nil, err
	}
	if leadID.Valid {
		val := leadID.Int64
		comm.LeadID = &val
	}
	if customerID.Valid {
		val := customerID.Int64
		comm.CustomerID = &val
	}
	if body.Valid {
		comm.Body = &body.String
	}
	comm.SentAt = sentAt.Time
	if repliedAt.Valid {
		val := repliedAt.Time
		comm.RepliedAt = &val
	}
	return &comm, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
