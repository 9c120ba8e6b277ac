package users

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

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, extra_capabilities, is_active, created_at, updated_at`

// ListUsers returns all users ordered by email.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetUser fetches one user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new account with the given password hash.
func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash, role string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role, extra_capabilities, is_active)
		 VALUES ($1, $2, $3, $4, '{}', TRUE) RETURNING id`,
		email, name, passwordHash, role,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("user with this email already exists: %w", httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

// UpdateUser applies the given column updates.
func (r *Repository) UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE users SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "role", "is_active", "extra_capabilities"} {
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
		return fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user                 User
		extraCaps            []string
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &extraCaps, &user.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if extraCaps == nil {
		extraCaps = []string{}
	}
	user.ExtraCapabilities = extraCaps
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}
