package investments

import (
	"time"

	"github.com/meridian-advisory/meridian/internal/authz"
)

// Investment represents a client's holding in a single instrument.
// OwnerUserID is denormalized from the owning client so permission checks
// need no extra lookup.
type Investment struct {
	ID          int64
	ClientID    int64
	OwnerUserID int64
	Symbol      string
	Quantity    float64
	UnitPrice   float64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ref flattens the ownership-relevant identifiers for permission checks.
func (i Investment) Ref() authz.InvestmentRef {
	return authz.InvestmentRef{ID: i.ID, OwnerUserID: i.OwnerUserID}
}

// Value is the current market value of the holding.
func (i Investment) Value() float64 {
	return i.Quantity * i.UnitPrice
}

// CreateParams carries the fields for a new holding.
type CreateParams struct {
	ClientID  int64
	Symbol    string
	Quantity  float64
	UnitPrice float64
	Currency  string
}

// UpdateParams carries the editable holding fields.
type UpdateParams struct {
	Quantity  float64
	UnitPrice float64
}

// Summary aggregates a client's portfolio per currency.
type Summary struct {
	ClientID int64
	Totals   []CurrencyTotal
}

// CurrencyTotal is the portfolio value in one currency, with a localized
// display string.
type CurrencyTotal struct {
	Currency  string
	Value     float64
	Formatted string
}
