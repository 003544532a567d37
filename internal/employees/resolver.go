package employees

import "context"

// Resolver exposes employee identity lookups to other modules.
type Resolver struct {
	repo RepositoryPort
}

// NewResolver constructs a Resolver.
func NewResolver(repo RepositoryPort) *Resolver {
	return &Resolver{repo: repo}
}

// UserIDFor returns the user account id behind an employee profile.
func (r *Resolver) UserIDFor(ctx context.Context, employeeID int64) (int64, error) {
	employee, err := r.repo.Get(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return employee.UserID, nil
}
