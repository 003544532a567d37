package employees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

type memoryEmployeeRepo struct {
	employees map[int64]Employee
	nextID    int64
}

func newMemoryEmployeeRepo() *memoryEmployeeRepo {
	return &memoryEmployeeRepo{employees: make(map[int64]Employee)}
}

func (r *memoryEmployeeRepo) Create(ctx context.Context, params CreateParams) (Employee, error) {
	r.nextID++
	e := Employee{ID: r.nextID, UserID: params.UserID, Title: params.Title}
	r.employees[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) Get(ctx context.Context, id int64) (Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return Employee{}, shared.ErrNotFound
	}
	return e, nil
}

func (r *memoryEmployeeRepo) List(ctx context.Context) ([]Employee, error) {
	out := make([]Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryEmployeeRepo) UpdateTitle(ctx context.Context, id int64, title string) (Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return Employee{}, shared.ErrNotFound
	}
	e.Title = title
	r.employees[id] = e
	return e, nil
}

var _ RepositoryPort = (*memoryEmployeeRepo)(nil)

func TestCreateEmployeeAdminOnly(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo, nil)

	employee := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10}
	_, err := svc.Create(context.Background(), employee, CreateParams{UserID: 40, Title: "Advisor"})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}
	created, err := svc.Create(context.Background(), admin, CreateParams{UserID: 40, Title: "Advisor"})
	require.NoError(t, err)
	require.Equal(t, "Advisor", created.Title)
}

func TestDirectoryVisibility(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo, nil)
	created, _ := repo.Create(context.Background(), CreateParams{UserID: 40, Title: "Advisor"})

	employee := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10}
	list, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := svc.Get(context.Background(), employee, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// Clients see no employee directory by default.
	client := &authz.Principal{ID: 30, Role: authz.RoleClient}
	_, err = svc.List(context.Background(), client)
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = svc.Get(context.Background(), client, created.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateTitleAdminOnly(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo, nil)
	created, _ := repo.Create(context.Background(), CreateParams{UserID: 40, Title: "Advisor"})

	employee := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: created.ID}
	_, err := svc.UpdateTitle(context.Background(), employee, created.ID, "Senior Advisor")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}
	updated, err := svc.UpdateTitle(context.Background(), admin, created.ID, "Senior Advisor")
	require.NoError(t, err)
	require.Equal(t, "Senior Advisor", updated.Title)
}
