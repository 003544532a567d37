package investments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-advisory/meridian/internal/shared"
)

// RepositoryPort defines data access methods for investments.
type RepositoryPort interface {
	Create(ctx context.Context, params CreateParams, ownerUserID int64) (Investment, error)
	Get(ctx context.Context, id int64) (Investment, error)
	ListByOwner(ctx context.Context, ownerUserID int64) ([]Investment, error)
	ListByClient(ctx context.Context, clientID int64) ([]Investment, error)
	Update(ctx context.Context, id int64, params UpdateParams) (Investment, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const investmentColumns = `id, client_id, owner_user_id, symbol, quantity, unit_price, currency, created_at, updated_at`

// Create inserts a new holding.
func (r *Repository) Create(ctx context.Context, params CreateParams, ownerUserID int64) (Investment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO investments (client_id, owner_user_id, symbol, quantity, unit_price, currency) VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+investmentColumns,
		params.ClientID, ownerUserID, params.Symbol, params.Quantity, params.UnitPrice, params.Currency)
	return scanInvestment(row)
}

// Get fetches one holding.
func (r *Repository) Get(ctx context.Context, id int64) (Investment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id)
	return scanInvestment(row)
}

// ListByOwner returns all holdings owned by a user account.
func (r *Repository) ListByOwner(ctx context.Context, ownerUserID int64) ([]Investment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+investmentColumns+` FROM investments WHERE owner_user_id = $1 ORDER BY symbol`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ListByClient returns all holdings of one client profile.
func (r *Repository) ListByClient(ctx context.Context, clientID int64) ([]Investment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+investmentColumns+` FROM investments WHERE client_id = $1 ORDER BY symbol`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Update edits quantity and price of a holding.
func (r *Repository) Update(ctx context.Context, id int64, params UpdateParams) (Investment, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE investments SET quantity = $2, unit_price = $3, updated_at = NOW() WHERE id = $1 RETURNING `+investmentColumns,
		id, params.Quantity, params.UnitPrice)
	return scanInvestment(row)
}

func scanInvestment(row pgx.Row) (Investment, error) {
	var inv Investment
	err := row.Scan(&inv.ID, &inv.ClientID, &inv.OwnerUserID, &inv.Symbol, &inv.Quantity, &inv.UnitPrice, &inv.Currency, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Investment{}, shared.ErrNotFound
		}
		return Investment{}, err
	}
	return inv, nil
}

var _ RepositoryPort = (*Repository)(nil)
