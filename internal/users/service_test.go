package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

type memoryUserRepo struct {
	users     map[int64]User
	passwords map[int64]string
	grants    map[int64]map[authz.Permission]struct{}
	nextID    int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:     make(map[int64]User),
		passwords: make(map[int64]string),
		grants:    make(map[int64]map[authz.Permission]struct{}),
	}
}

func (r *memoryUserRepo) Create(ctx context.Context, email, name, passwordHash string, role authz.Role) (User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return User{}, httpx.ErrDuplicate
		}
	}
	r.nextID++
	user := User{ID: r.nextID, Email: email, Name: name, Role: role, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.users[user.ID] = user
	r.passwords[user.ID] = passwordHash
	return user, nil
}

func (r *memoryUserRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *memoryUserRepo) UpdateDetails(ctx context.Context, id int64, update DetailsUpdate) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	u.Name = update.Name
	u.Email = update.Email
	r.users[id] = u
	return u, nil
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	r.passwords[id] = passwordHash
	return nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) MarkClientRequested(ctx context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.ClientRequested = true
	r.users[id] = u
	return nil
}

func (r *memoryUserRepo) ListGrants(ctx context.Context, id int64) ([]string, error) {
	var out []string
	for g := range r.grants[id] {
		out = append(out, string(g))
	}
	return out, nil
}

func (r *memoryUserRepo) AddGrant(ctx context.Context, id int64, permission authz.Permission) error {
	if r.grants[id] == nil {
		r.grants[id] = make(map[authz.Permission]struct{})
	}
	r.grants[id][permission] = struct{}{}
	return nil
}

func (r *memoryUserRepo) RemoveGrant(ctx context.Context, id int64, permission authz.Permission) error {
	delete(r.grants[id], permission)
	return nil
}

var _ RepositoryPort = (*memoryUserRepo)(nil)

func anonymousGuest() *authz.Principal {
	return &authz.Principal{Role: authz.RoleGuest}
}

func TestRegisterAsGuest(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)

	user, err := svc.Register(context.Background(), anonymousGuest(), Registration{
		Email:    "New.Client@Example.com",
		Name:     "New Client",
		Password: "longenough",
	})
	require.NoError(t, err)
	require.Equal(t, "new.client@example.com", user.Email)
	require.Equal(t, authz.RoleGuest, user.Role)

	hash := repo.passwords[user.ID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("longenough")))
}

func TestRegisterDeniedWithoutPrincipal(t *testing.T) {
	svc := NewService(newMemoryUserRepo(), nil)
	_, err := svc.Register(context.Background(), nil, Registration{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGetSelfAndForeign(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	me, _ := repo.Create(context.Background(), "me@example.com", "Me", "x", authz.RoleClient)
	other, _ := repo.Create(context.Background(), "other@example.com", "Other", "x", authz.RoleClient)

	principal := &authz.Principal{ID: me.ID, Role: authz.RoleClient}
	got, err := svc.Get(context.Background(), principal, me.ID)
	require.NoError(t, err)
	require.Equal(t, me.ID, got.ID)

	_, err = svc.Get(context.Background(), principal, other.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	admin := &authz.Principal{ID: 999, Role: authz.RoleAdmin}
	got, err = svc.Get(context.Background(), admin, other.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, got.ID)
}

func TestListRequiresAdmin(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	_, _ = repo.Create(context.Background(), "a@example.com", "A", "x", authz.RoleClient)

	_, _, err := svc.List(context.Background(), &authz.Principal{ID: 1, Role: authz.RoleEmployee, EmployeeID: 1}, 1, 20)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	list, total, err := svc.List(context.Background(), &authz.Principal{ID: 2, Role: authz.RoleAdmin}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
}

func TestUpdateMyDetailsSelfOnly(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	me, _ := repo.Create(context.Background(), "me@example.com", "Me", "x", authz.RoleClient)
	other, _ := repo.Create(context.Background(), "other@example.com", "Other", "x", authz.RoleClient)

	principal := &authz.Principal{ID: me.ID, Role: authz.RoleClient}
	updated, err := svc.UpdateMyDetails(context.Background(), principal, me.ID, DetailsUpdate{Name: "Renamed", Email: "me@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	_, err = svc.UpdateMyDetails(context.Background(), principal, other.ID, DetailsUpdate{Name: "Hijack", Email: "x@example.com"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdatePasswordPaths(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	me, _ := repo.Create(context.Background(), "me@example.com", "Me", "x", authz.RoleClient)
	other, _ := repo.Create(context.Background(), "other@example.com", "Other", "x", authz.RoleClient)

	self := &authz.Principal{ID: me.ID, Role: authz.RoleClient}
	require.NoError(t, svc.UpdatePassword(context.Background(), self, me.ID, "newpassword"))

	// A non-admin cannot change somebody else's password.
	err := svc.UpdatePassword(context.Background(), self, other.ID, "newpassword")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	admin := &authz.Principal{ID: 999, Role: authz.RoleAdmin}
	require.NoError(t, svc.UpdatePassword(context.Background(), admin, other.ID, "resetpassword"))
}

func TestDeleteRequiresAdmin(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	victim, _ := repo.Create(context.Background(), "v@example.com", "V", "x", authz.RoleClient)

	err := svc.Delete(context.Background(), &authz.Principal{ID: victim.ID, Role: authz.RoleClient}, victim.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), &authz.Principal{ID: 1, Role: authz.RoleAdmin}, victim.ID))
	_, err = repo.Get(context.Background(), victim.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRequestClientAccount(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	guest, _ := repo.Create(context.Background(), "g@example.com", "G", "x", authz.RoleGuest)

	principal := &authz.Principal{ID: guest.ID, Role: authz.RoleGuest}
	require.NoError(t, svc.RequestClientAccount(context.Background(), principal))

	stored, _ := repo.Get(context.Background(), guest.ID)
	require.True(t, stored.ClientRequested)

	// Employees do not hold the request permission.
	err := svc.RequestClientAccount(context.Background(), &authz.Principal{ID: 2, Role: authz.RoleEmployee})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGrantManagement(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, nil)
	user, _ := repo.Create(context.Background(), "u@example.com", "U", "x", authz.RoleClient)

	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}
	employee := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 7}

	require.ErrorIs(t, svc.AddGrant(context.Background(), employee, user.ID, "clients.list"), httpx.ErrForbidden)

	require.NoError(t, svc.AddGrant(context.Background(), admin, user.ID, "clients.list"))
	require.ErrorIs(t, svc.AddGrant(context.Background(), admin, user.ID, "not.a.permission"), httpx.ErrValidation)

	grants, err := svc.Grants(context.Background(), admin, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"clients.list"}, grants)

	require.NoError(t, svc.RemoveGrant(context.Background(), admin, user.ID, "clients.list"))
	grants, _ = svc.Grants(context.Background(), admin, user.ID)
	require.Empty(t, grants)
}
