package clients

import (
	"context"
	"strconv"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// Service handles client profile business logic. Entity-scoped reads and
// writes build a ClientRef from the loaded row and let the evaluator apply
// the assignment/ownership predicate.
type Service struct {
	repo      RepositoryPort
	audit     *shared.AuditLogger
	evaluator authz.Evaluator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create opens a client profile; employees create profiles into their own
// book, admins anywhere. Non-admins may not create on behalf of another
// employee.
func (s *Service) Create(ctx context.Context, principal *authz.Principal, params CreateParams) (Client, error) {
	if !s.evaluator.HasPermission(principal, authz.PermCreateClient, nil) {
		return Client{}, httpx.ErrForbidden
	}
	if principal.Role != authz.RoleAdmin {
		if principal.EmployeeID == 0 || (params.AssignedEmployeeID != 0 && params.AssignedEmployeeID != principal.EmployeeID) {
			return Client{}, httpx.ErrForbidden
		}
		params.AssignedEmployeeID = principal.EmployeeID
	}
	client, err := s.repo.Create(ctx, params)
	if err != nil {
		return Client{}, err
	}
	s.recordAudit(ctx, principal, "clients.create", client.ID, nil)
	return client, nil
}

// Get returns one client profile: the assigned employee, the owning user, or
// an admin.
func (s *Service) Get(ctx context.Context, principal *authz.Principal, id int64) (Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if !s.evaluator.HasPermission(principal, authz.PermViewClient, client.Ref()) {
		return Client{}, httpx.ErrForbidden
	}
	return client, nil
}

// GetMine returns the client profile owned by the principal's user account.
func (s *Service) GetMine(ctx context.Context, principal *authz.Principal) (Client, error) {
	if principal == nil {
		return Client{}, httpx.ErrUnauthorized
	}
	client, err := s.repo.GetByUserID(ctx, principal.ID)
	if err != nil {
		return Client{}, err
	}
	if !s.evaluator.HasPermission(principal, authz.PermViewClient, client.Ref()) {
		return Client{}, httpx.ErrForbidden
	}
	return client, nil
}

// List pages through client profiles. Employees see their own book; admins
// see everything.
func (s *Service) List(ctx context.Context, principal *authz.Principal, page, perPage int) ([]Client, int, error) {
	if !s.evaluator.HasPermission(principal, authz.PermViewClients, nil) {
		return nil, 0, httpx.ErrForbidden
	}
	scope := int64(0)
	if principal.Role != authz.RoleAdmin {
		if principal.EmployeeID == 0 {
			return nil, 0, httpx.ErrForbidden
		}
		scope = principal.EmployeeID
	}
	return s.repo.List(ctx, scope, page, perPage)
}

// Update edits a client profile; only the assigned employee or an admin.
func (s *Service) Update(ctx context.Context, principal *authz.Principal, id int64, params UpdateParams) (Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if !s.evaluator.HasPermission(principal, authz.PermEditClient, client.Ref()) {
		return Client{}, httpx.ErrForbidden
	}
	// The owning user passes the ownership predicate but profile edits are
	// employee work; clients without the edit grant stop at the general gate.
	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Client{}, err
	}
	s.recordAudit(ctx, principal, "clients.edit", id, nil)
	return updated, nil
}

// Assign moves a client to another employee's book.
func (s *Service) Assign(ctx context.Context, principal *authz.Principal, id, employeeID int64) (Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if !s.evaluator.HasPermission(principal, authz.PermAssignClient, client.Ref()) {
		return Client{}, httpx.ErrForbidden
	}
	updated, err := s.repo.Assign(ctx, id, employeeID)
	if err != nil {
		return Client{}, err
	}
	s.recordAudit(ctx, principal, "clients.assign", id, map[string]any{
		"from_employee": client.AssignedEmployeeID,
		"to_employee":   employeeID,
	})
	return updated, nil
}

// Delete removes a client profile. The permission is not a role default for
// anyone below admin; senior employees receive it as a custom grant.
func (s *Service) Delete(ctx context.Context, principal *authz.Principal, id int64) error {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.evaluator.HasPermission(principal, authz.PermDeleteClient, client.Ref()) {
		return httpx.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "clients.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, principal *authz.Principal, action string, clientID int64, meta map[string]any) {
	if s.audit == nil || principal == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "client",
		EntityID: strconv.FormatInt(clientID, 10),
		Meta:     meta,
	})
}
