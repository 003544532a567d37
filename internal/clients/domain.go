package clients

import (
	"time"

	"github.com/meridian-advisory/meridian/internal/authz"
)

// Client represents a client profile managed by an advisory employee.
type Client struct {
	ID                 int64
	UserID             int64
	AssignedEmployeeID int64
	FullName           string
	RiskProfile        string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Ref flattens the ownership-relevant identifiers for permission checks.
func (c Client) Ref() authz.ClientRef {
	return authz.ClientRef{
		ID:                 c.ID,
		OwnerUserID:        c.UserID,
		AssignedEmployeeID: c.AssignedEmployeeID,
	}
}

// CreateParams carries the fields for a new client profile.
type CreateParams struct {
	UserID             int64
	AssignedEmployeeID int64
	FullName           string
	RiskProfile        string
	Notes              string
}

// UpdateParams carries the editable profile fields.
type UpdateParams struct {
	FullName    string
	RiskProfile string
	Notes       string
}
