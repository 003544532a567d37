package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Principal assembles the authorization principal for a user: role, custom
// grants unioned on load, and the employee-profile binding used by
// client-assignment checks. Grant rows that no longer name a catalog
// permission are dropped rather than trusted.
func (s *Service) Principal(ctx context.Context, userID int64) (*authz.Principal, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrNotFound
	}

	raw, err := s.repo.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	grants := authz.Set{}
	for _, g := range raw {
		if perm, ok := authz.ParsePermission(g); ok {
			grants[perm] = struct{}{}
		}
	}

	employeeID, err := s.repo.EmployeeProfileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &authz.Principal{
		ID:         user.ID,
		Role:       user.Role,
		EmployeeID: employeeID,
		Grants:     grants,
	}, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
