package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Lead, error)
	List(ctx context.Context, req ListLeadsRequest) ([]Lead, int, error)
	Create(ctx context.Context, lead Lead) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const leadColumns = `id, name, email, phone, company, source, status, notes, owner_id, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lead %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return lead, nil
}

func (r *repository) List(ctx context.Context, req ListLeadsRequest) ([]Lead, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		pattern := "%" + *req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+leadColumns+` FROM leads %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *lead)
	}
	return leads, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, lead Lead) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO leads (name, email, phone, company, source, status, notes, owner_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		lead.Name,
		textOrNull(lead.Email),
		textOrNull(lead.Phone),
		textOrNull(lead.Company),
		lead.Source,
		lead.Status,
		textOrNull(lead.Notes),
		lead.OwnerID,
		lead.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("lead with this email already exists: %w", httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE leads SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "email", "phone", "company", "source", "status", "notes", "owner_id"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead                        Lead
		email, phone, company, note pgtype.Text
		ownerID                     pgtype.Int8
		createdAt, updatedAt        pgtype.Timestamptz
	)
	err := row.Scan(&lead.ID, &lead.Name, &email, &phone, &company, &lead.Source, &lead.Status, &note, &ownerID, &lead.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		lead.Email = &email.String
	}
	if phone.Valid {
		lead.Phone = &phone.String
	}
	if company.Valid {
		lead.Company = &company.String
	}
	if note.Valid {
		lead.Notes = &note.String
	}
	if ownerID.Valid {
		val := ownerID.Int64
		lead.OwnerID = &val
	}
	lead.CreatedAt = createdAt.Time
	lead.UpdatedAt = updatedAt.Time
	return &lead, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
