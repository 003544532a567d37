package clients

import (
	"context"

	"github.com/meridian-advisory/meridian/internal/authz"
)

// Resolver exposes client ownership data to other modules as flattened
// permission references, without handing out the repository.
type Resolver struct {
	repo RepositoryPort
}

// NewResolver constructs a Resolver.
func NewResolver(repo RepositoryPort) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the ownership reference for a client id.
func (r *Resolver) Resolve(ctx context.Context, clientID int64) (authz.ClientRef, error) {
	client, err := r.repo.Get(ctx, clientID)
	if err != nil {
		return authz.ClientRef{}, err
	}
	return client.Ref(), nil
}

// ResolveByUser returns the ownership reference for the client profile owned
// by a user account.
func (r *Resolver) ResolveByUser(ctx context.Context, userID int64) (authz.ClientRef, error) {
	client, err := r.repo.GetByUserID(ctx, userID)
	if err != nil {
		return authz.ClientRef{}, err
	}
	return client.Ref(), nil
}
