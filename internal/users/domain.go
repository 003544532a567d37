package users

import (
	"time"

	"github.com/meridian-advisory/meridian/internal/authz"
)

// User represents a user account for management.
type User struct {
	ID              int64
	Email           string
	Name            string
	Role            authz.Role
	IsActive        bool
	ClientRequested bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DetailsUpdate carries the self-service editable fields.
type DetailsUpdate struct {
	Name  string
	Email string
}

// Registration carries the fields for a new guest account.
type Registration struct {
	Email    string
	Name     string
	Password string
}
