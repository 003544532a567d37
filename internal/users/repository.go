package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, email, name, passwordHash string, role authz.Role) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, page, perPage int) ([]User, int, error)
	UpdateDetails(ctx context.Context, id int64, update DetailsUpdate) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	MarkClientRequested(ctx context.Context, id int64) error
	ListGrants(ctx context.Context, id int64) ([]string, error)
	AddGrant(ctx context.Context, id int64, permission authz.Permission) error
	RemoveGrant(ctx context.Context, id int64, permission authz.Permission) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, is_active, client_requested, created_at, updated_at`

// Create inserts a new user account.
func (r *Repository) Create(ctx context.Context, email, name, passwordHash string, role authz.Role) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role, is_active) VALUES ($1, $2, $3, $4, TRUE) RETURNING `+userColumns,
		email, name, passwordHash, string(role))
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, httpx.ErrDuplicate
		}
		return User{}, err
	}
	return user, nil
}

// Get fetches one user.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// List returns a page of users plus the total count.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	p := shared.NewPagination(page, perPage, 0)
	offset := (p.Page - 1) * p.PerPage

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, p.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, user)
	}
	return out, total, rows.Err()
}

// UpdateDetails updates name/email for a user.
func (r *Repository) UpdateDetails(ctx context.Context, id int64, update DetailsUpdate) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
		id, update.Name, update.Email)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, httpx.ErrDuplicate
		}
		return User{}, err
	}
	return user, nil
}

// UpdatePassword stores a new password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a user account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkClientRequested flags the account as awaiting client onboarding.
func (r *Repository) MarkClientRequested(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET client_requested = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListGrants returns the raw custom grants for a user.
func (r *Repository) ListGrants(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT permission FROM user_grants WHERE user_id = $1 ORDER BY permission`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddGrant stores one additive permission grant; re-adding is a no-op.
func (r *Repository) AddGrant(ctx context.Context, id int64, permission authz.Permission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_grants (user_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		id, string(permission))
	return err
}

// RemoveGrant deletes one custom grant. Role defaults are untouched; grants
// only ever add to them.
func (r *Repository) RemoveGrant(ctx context.Context, id int64, permission authz.Permission) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_grants WHERE user_id = $1 AND permission = $2`, id, string(permission))
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u       User
		rawRole string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &rawRole, &u.IsActive, &u.ClientRequested, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	role, err := authz.ParseRole(rawRole)
	if err != nil {
		return User{}, err
	}
	u.Role = role
	return u, nil
}

var _ RepositoryPort = (*Repository)(nil)
