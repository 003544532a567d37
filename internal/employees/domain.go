package employees

import "time"

// Employee represents an advisory employee profile.
type Employee struct {
	ID        int64
	UserID    int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams carries the fields for a new employee profile.
type CreateParams struct {
	UserID int64
	Title  string
}
