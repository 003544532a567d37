package employees

import (
	"context"
	"strconv"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// Service handles employee profile business logic. Directory views are
// general permission checks; there is no per-employee ownership predicate.
type Service struct {
	repo      RepositoryPort
	audit     *shared.AuditLogger
	evaluator authz.Evaluator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create opens an employee profile; admin-only.
func (s *Service) Create(ctx context.Context, principal *authz.Principal, params CreateParams) (Employee, error) {
	if !s.evaluator.HasPermission(principal, authz.PermCreateEmployee, nil) {
		return Employee{}, httpx.ErrForbidden
	}
	employee, err := s.repo.Create(ctx, params)
	if err != nil {
		return Employee{}, err
	}
	s.recordAudit(ctx, principal, "employees.create", employee.ID)
	return employee, nil
}

// Get returns one employee profile.
func (s *Service) Get(ctx context.Context, principal *authz.Principal, id int64) (Employee, error) {
	if !s.evaluator.HasPermission(principal, authz.PermViewEmployee, nil) {
		return Employee{}, httpx.ErrForbidden
	}
	return s.repo.Get(ctx, id)
}

// List returns the employee directory.
func (s *Service) List(ctx context.Context, principal *authz.Principal) ([]Employee, error) {
	if !s.evaluator.HasPermission(principal, authz.PermViewEmployees, nil) {
		return nil, httpx.ErrForbidden
	}
	return s.repo.List(ctx)
}

// UpdateTitle edits an employee profile; admin-only.
func (s *Service) UpdateTitle(ctx context.Context, principal *authz.Principal, id int64, title string) (Employee, error) {
	if !s.evaluator.HasPermission(principal, authz.PermEditEmployee, nil) {
		return Employee{}, httpx.ErrForbidden
	}
	employee, err := s.repo.UpdateTitle(ctx, id, title)
	if err != nil {
		return Employee{}, err
	}
	s.recordAudit(ctx, principal, "employees.edit", id)
	return employee, nil
}

func (s *Service) recordAudit(ctx context.Context, principal *authz.Principal, action string, employeeID int64) {
	if s.audit == nil || principal == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "employee",
		EntityID: strconv.FormatInt(employeeID, 10),
	})
}
