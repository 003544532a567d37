package users

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// Service handles user account business logic. Every operation that touches
// another user's data runs through the permission evaluator; denials surface
// as httpx.ErrForbidden.
type Service struct {
	repo      RepositoryPort
	audit     *shared.AuditLogger
	evaluator authz.Evaluator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Register creates a new guest account. The acting principal may be the
// anonymous guest; registration is a guest-role default.
func (s *Service) Register(ctx context.Context, principal *authz.Principal, reg Registration) (User, error) {
	if !s.evaluator.HasPermission(principal, authz.PermRegisterUser, nil) {
		return User{}, httpx.ErrForbidden
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	return s.repo.Create(ctx, email, strings.TrimSpace(reg.Name), string(hash), authz.RoleGuest)
}

// Get returns one user account: admins may view any, everyone else only
// their own.
func (s *Service) Get(ctx context.Context, principal *authz.Principal, id int64) (User, error) {
	if !s.evaluator.HasPermission(principal, authz.PermViewAccount, authz.UserAccountRef{ID: id}) {
		return User{}, httpx.ErrForbidden
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of all accounts; admin-only.
func (s *Service) List(ctx context.Context, principal *authz.Principal, page, perPage int) ([]User, int, error) {
	if !s.evaluator.HasPermission(principal, authz.PermViewAccounts, nil) {
		return nil, 0, httpx.ErrForbidden
	}
	return s.repo.List(ctx, page, perPage)
}

// UpdateMyDetails edits the principal's own account.
func (s *Service) UpdateMyDetails(ctx context.Context, principal *authz.Principal, id int64, update DetailsUpdate) (User, error) {
	if !s.evaluator.HasPermission(principal, authz.PermEditOwnDetails, authz.UserAccountRef{ID: id}) {
		return User{}, httpx.ErrForbidden
	}
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))
	update.Name = strings.TrimSpace(update.Name)
	return s.repo.UpdateDetails(ctx, id, update)
}

// AdminUpdateUser edits any account; requires the admin-only users.edit
// permission.
func (s *Service) AdminUpdateUser(ctx context.Context, principal *authz.Principal, id int64, update DetailsUpdate) (User, error) {
	if !s.evaluator.HasPermission(principal, authz.PermEditUser, nil) {
		return User{}, httpx.ErrForbidden
	}
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))
	update.Name = strings.TrimSpace(update.Name)
	user, err := s.repo.UpdateDetails(ctx, id, update)
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, principal, "users.edit", id, nil)
	return user, nil
}

// UpdatePassword changes a password. Changing one's own password needs
// account.password_own with the self predicate; changing anybody else's needs
// the admin-only users.password_other.
func (s *Service) UpdatePassword(ctx context.Context, principal *authz.Principal, id int64, newPassword string) error {
	allowed := s.evaluator.HasPermission(principal, authz.PermUpdateOwnPassword, authz.UserAccountRef{ID: id})
	if !allowed && principal != nil && principal.ID != id {
		allowed = s.evaluator.HasPermission(principal, authz.PermUpdateOtherPassword, nil)
	}
	if !allowed {
		return httpx.ErrForbidden
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}
	if principal != nil && principal.ID != id {
		s.recordAudit(ctx, principal, "users.password_other", id, nil)
	}
	return nil
}

// Delete removes an account; requires the admin-only users.delete permission.
func (s *Service) Delete(ctx context.Context, principal *authz.Principal, id int64) error {
	if !s.evaluator.HasPermission(principal, authz.PermDeleteUser, nil) {
		return httpx.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "users.delete", id, nil)
	return nil
}

// RequestClientAccount flags the principal's account for client onboarding by
// an employee.
func (s *Service) RequestClientAccount(ctx context.Context, principal *authz.Principal) error {
	if !s.evaluator.HasPermission(principal, authz.PermRequestClientAccount, nil) {
		return httpx.ErrForbidden
	}
	if principal.ID == 0 {
		return httpx.ErrUnauthorized
	}
	return s.repo.MarkClientRequested(ctx, principal.ID)
}

// Grants returns the custom grants stored for a user; admin-only.
func (s *Service) Grants(ctx context.Context, principal *authz.Principal, id int64) ([]string, error) {
	if !s.evaluator.HasPermission(principal, authz.PermEditUser, nil) {
		return nil, httpx.ErrForbidden
	}
	return s.repo.ListGrants(ctx, id)
}

// AddGrant attaches one additive permission to a user; admin-only. Unknown
// permission names are rejected so the stored grants always come from the
// catalog.
func (s *Service) AddGrant(ctx context.Context, principal *authz.Principal, id int64, rawPermission string) error {
	if !s.evaluator.HasPermission(principal, authz.PermEditUser, nil) {
		return httpx.ErrForbidden
	}
	perm, ok := authz.ParsePermission(rawPermission)
	if !ok {
		return httpx.ErrValidation
	}
	if err := s.repo.AddGrant(ctx, id, perm); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "users.grant_add", id, map[string]any{"permission": string(perm)})
	return nil
}

// RemoveGrant detaches one custom grant; admin-only.
func (s *Service) RemoveGrant(ctx context.Context, principal *authz.Principal, id int64, rawPermission string) error {
	if !s.evaluator.HasPermission(principal, authz.PermEditUser, nil) {
		return httpx.ErrForbidden
	}
	perm, ok := authz.ParsePermission(rawPermission)
	if !ok {
		return httpx.ErrValidation
	}
	if err := s.repo.RemoveGrant(ctx, id, perm); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "users.grant_remove", id, map[string]any{"permission": string(perm)})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, principal *authz.Principal, action string, targetID int64, meta map[string]any) {
	if s.audit == nil || principal == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(targetID, 10),
		Meta:     meta,
	})
}
