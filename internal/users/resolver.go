package users

import "context"

// Resolver exposes user account lookups to other modules.
type Resolver struct {
	repo RepositoryPort
}

// NewResolver constructs a Resolver.
func NewResolver(repo RepositoryPort) *Resolver {
	return &Resolver{repo: repo}
}

// Email returns the address of a user account.
func (r *Resolver) Email(ctx context.Context, userID int64) (string, error) {
	user, err := r.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
