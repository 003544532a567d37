package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// RepositoryPort defines data access methods for client profiles.
type RepositoryPort interface {
	Create(ctx context.Context, params CreateParams) (Client, error)
	Get(ctx context.Context, id int64) (Client, error)
	GetByUserID(ctx context.Context, userID int64) (Client, error)
	List(ctx context.Context, assignedEmployeeID int64, page, perPage int) ([]Client, int, error)
	Update(ctx context.Context, id int64, params UpdateParams) (Client, error)
	Assign(ctx context.Context, id, employeeID int64) (Client, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, user_id, assigned_employee_id, full_name, risk_profile, notes, created_at, updated_at`

// Create inserts a new client profile and promotes the owning user to the
// client role in the same transaction.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Client, error) {
	var client Client
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO clients (user_id, assigned_employee_id, full_name, risk_profile, notes) VALUES ($1, $2, $3, $4, $5) RETURNING `+clientColumns,
			params.UserID, params.AssignedEmployeeID, params.FullName, params.RiskProfile, params.Notes)
		var err error
		client, err = scanClient(row)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET role = 'client', client_requested = FALSE, updated_at = NOW() WHERE id = $1 AND role = 'guest'`,
			params.UserID)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Client{}, httpx.ErrDuplicate
		}
		return Client{}, err
	}
	return client, nil
}

// Get fetches one client profile.
func (r *Repository) Get(ctx context.Context, id int64) (Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

// GetByUserID fetches the client profile owned by a user account.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE user_id = $1`, userID)
	return scanClient(row)
}

// List returns a page of clients, optionally narrowed to one employee's book.
func (r *Repository) List(ctx context.Context, assignedEmployeeID int64, page, perPage int) ([]Client, int, error) {
	p := shared.NewPagination(page, perPage, 0)
	offset := (p.Page - 1) * p.PerPage

	where := ``
	args := []any{p.PerPage, offset}
	countArgs := []any{}
	if assignedEmployeeID != 0 {
		where = ` WHERE assigned_employee_id = $3`
		args = append(args, assignedEmployeeID)
		countArgs = append(countArgs, assignedEmployeeID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM clients`
	if assignedEmployeeID != 0 {
		countQuery += ` WHERE assigned_employee_id = $1`
	}
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients`+where+` ORDER BY id LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Update edits the profile fields.
func (r *Repository) Update(ctx context.Context, id int64, params UpdateParams) (Client, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE clients SET full_name = $2, risk_profile = $3, notes = $4, updated_at = NOW() WHERE id = $1 RETURNING `+clientColumns,
		id, params.FullName, params.RiskProfile, params.Notes)
	return scanClient(row)
}

// Assign moves the client to another employee's book.
func (r *Repository) Assign(ctx context.Context, id, employeeID int64) (Client, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE clients SET assigned_employee_id = $2, updated_at = NOW() WHERE id = $1 RETURNING `+clientColumns,
		id, employeeID)
	return scanClient(row)
}

// Delete removes a client profile.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.UserID, &c.AssignedEmployeeID, &c.FullName, &c.RiskProfile, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, shared.ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}

var _ RepositoryPort = (*Repository)(nil)
