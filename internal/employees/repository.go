package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// RepositoryPort defines data access methods for employee profiles.
type RepositoryPort interface {
	Create(ctx context.Context, params CreateParams) (Employee, error)
	Get(ctx context.Context, id int64) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
	UpdateTitle(ctx context.Context, id int64, title string) (Employee, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, user_id, title, created_at, updated_at`

// Create inserts a new employee profile and promotes the owning user to the
// employee role.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Employee, error) {
	var employee Employee
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO employees (user_id, title) VALUES ($1, $2) RETURNING `+employeeColumns,
			params.UserID, params.Title)
		var err error
		employee, err = scanEmployee(row)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE users SET role = 'employee', updated_at = NOW() WHERE id = $1 AND role IN ('guest', 'client')`, params.UserID)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, httpx.ErrDuplicate
		}
		return Employee{}, err
	}
	return employee, nil
}

// Get fetches one employee profile.
func (r *Repository) Get(ctx context.Context, id int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

// List returns all employee profiles.
func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateTitle edits the employee title.
func (r *Repository) UpdateTitle(ctx context.Context, id int64, title string) (Employee, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE employees SET title = $2, updated_at = NOW() WHERE id = $1 RETURNING `+employeeColumns,
		id, title)
	return scanEmployee(row)
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, err
	}
	return e, nil
}

var _ RepositoryPort = (*Repository)(nil)
