package investments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

type memoryInvestmentRepo struct {
	investments map[int64]Investment
	nextID      int64
}

func newMemoryInvestmentRepo() *memoryInvestmentRepo {
	return &memoryInvestmentRepo{investments: make(map[int64]Investment)}
}

func (r *memoryInvestmentRepo) Create(ctx context.Context, params CreateParams, ownerUserID int64) (Investment, error) {
	r.nextID++
	inv := Investment{
		ID:          r.nextID,
		ClientID:    params.ClientID,
		OwnerUserID: ownerUserID,
		Symbol:      params.Symbol,
		Quantity:    params.Quantity,
		UnitPrice:   params.UnitPrice,
		Currency:    params.Currency,
	}
	r.investments[inv.ID] = inv
	return inv, nil
}

func (r *memoryInvestmentRepo) Get(ctx context.Context, id int64) (Investment, error) {
	inv, ok := r.investments[id]
	if !ok {
		return Investment{}, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memoryInvestmentRepo) ListByOwner(ctx context.Context, ownerUserID int64) ([]Investment, error) {
	var out []Investment
	for _, inv := range r.investments {
		if inv.OwnerUserID == ownerUserID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memoryInvestmentRepo) ListByClient(ctx context.Context, clientID int64) ([]Investment, error) {
	var out []Investment
	for _, inv := range r.investments {
		if inv.ClientID == clientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memoryInvestmentRepo) Update(ctx context.Context, id int64, params UpdateParams) (Investment, error) {
	inv, ok := r.investments[id]
	if !ok {
		return Investment{}, shared.ErrNotFound
	}
	inv.Quantity = params.Quantity
	inv.UnitPrice = params.UnitPrice
	r.investments[id] = inv
	return inv, nil
}

var _ RepositoryPort = (*memoryInvestmentRepo)(nil)

type stubResolver struct {
	refs map[int64]authz.ClientRef
}

func (s *stubResolver) Resolve(ctx context.Context, clientID int64) (authz.ClientRef, error) {
	ref, ok := s.refs[clientID]
	if !ok {
		return authz.ClientRef{}, shared.ErrNotFound
	}
	return ref, nil
}

func fixture() (*Service, *memoryInvestmentRepo) {
	repo := newMemoryInvestmentRepo()
	resolver := &stubResolver{refs: map[int64]authz.ClientRef{
		1: {ID: 1, OwnerUserID: 30, AssignedEmployeeID: 10},
		2: {ID: 2, OwnerUserID: 31, AssignedEmployeeID: 11},
	}}
	return NewService(repo, resolver, nil), repo
}

func TestCreateOnlyForAssignedClient(t *testing.T) {
	svc, _ := fixture()
	params := CreateParams{ClientID: 1, Symbol: "VTI", Quantity: 10, UnitPrice: 250, Currency: "USD"}

	assigned := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10}
	inv, err := svc.Create(context.Background(), assigned, params)
	require.NoError(t, err)
	require.Equal(t, int64(30), inv.OwnerUserID)

	other := &authz.Principal{ID: 3, Role: authz.RoleEmployee, EmployeeID: 11}
	_, err = svc.Create(context.Background(), other, params)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// The owning client cannot book holdings either.
	owner := &authz.Principal{ID: 30, Role: authz.RoleClient}
	_, err = svc.Create(context.Background(), owner, params)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}
	_, err = svc.Create(context.Background(), admin, CreateParams{ClientID: 2, Symbol: "BND", Quantity: 5, UnitPrice: 80, Currency: "USD"})
	require.NoError(t, err)
}

func TestGetOwnershipPaths(t *testing.T) {
	svc, repo := fixture()
	inv, _ := repo.Create(context.Background(), CreateParams{ClientID: 1, Symbol: "VTI", Quantity: 10, UnitPrice: 250, Currency: "USD"}, 30)

	// The owning client matches through the holding's own reference.
	owner := &authz.Principal{ID: 30, Role: authz.RoleClient}
	got, err := svc.Get(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)

	// A different client fails the ownership predicate.
	stranger := &authz.Principal{ID: 31, Role: authz.RoleClient}
	_, err = svc.Get(context.Background(), stranger, inv.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// The assigned employee matches through the owning client's reference,
	// but only with a view grant; the role default set lacks it.
	assigned := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10}
	_, err = svc.Get(context.Background(), assigned, inv.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	assigned.Grants = authz.NewSet(authz.PermViewInvestment)
	_, err = svc.Get(context.Background(), assigned, inv.ID)
	require.NoError(t, err)

	// The grant does not help an employee assigned elsewhere.
	other := &authz.Principal{ID: 3, Role: authz.RoleEmployee, EmployeeID: 11, Grants: authz.NewSet(authz.PermViewInvestment)}
	_, err = svc.Get(context.Background(), other, inv.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateAssignedEmployeeOnly(t *testing.T) {
	svc, repo := fixture()
	inv, _ := repo.Create(context.Background(), CreateParams{ClientID: 1, Symbol: "VTI", Quantity: 10, UnitPrice: 250, Currency: "USD"}, 30)

	assigned := &authz.Principal{ID: 2, Role: authz.RoleEmployee, EmployeeID: 10}
	updated, err := svc.Update(context.Background(), assigned, inv.ID, UpdateParams{Quantity: 12, UnitPrice: 260})
	require.NoError(t, err)
	require.Equal(t, float64(12), updated.Quantity)

	// The owning client holds no edit permission.
	owner := &authz.Principal{ID: 30, Role: authz.RoleClient}
	_, err = svc.Update(context.Background(), owner, inv.ID, UpdateParams{Quantity: 1, UnitPrice: 1})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestListMineScopesToOwner(t *testing.T) {
	svc, repo := fixture()
	_, _ = repo.Create(context.Background(), CreateParams{ClientID: 1, Symbol: "VTI", Quantity: 10, UnitPrice: 250, Currency: "USD"}, 30)
	_, _ = repo.Create(context.Background(), CreateParams{ClientID: 2, Symbol: "BND", Quantity: 5, UnitPrice: 80, Currency: "USD"}, 31)

	owner := &authz.Principal{ID: 30, Role: authz.RoleClient}
	list, err := svc.ListMine(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "VTI", list[0].Symbol)

	_, err = svc.ListMine(context.Background(), nil)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	// Guests never see holdings.
	_, err = svc.ListMine(context.Background(), &authz.Principal{Role: authz.RoleGuest})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestSummarizeGroupsByCurrency(t *testing.T) {
	svc, repo := fixture()
	_, _ = repo.Create(context.Background(), CreateParams{ClientID: 1, Symbol: "VTI", Quantity: 100, UnitPrice: 250, Currency: "USD"}, 30)
	_, _ = repo.Create(context.Background(), CreateParams{ClientID: 1, Symbol: "BND", Quantity: 50, UnitPrice: 80, Currency: "USD"}, 30)
	_, _ = repo.Create(context.Background(), CreateParams{ClientID: 1, Symbol: "VEUR", Quantity: 10, UnitPrice: 40, Currency: "EUR"}, 30)

	owner := &authz.Principal{ID: 30, Role: authz.RoleClient}
	summary, err := svc.Summarize(context.Background(), owner, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.ClientID)
	require.Len(t, summary.Totals, 2)

	require.Equal(t, "EUR", summary.Totals[0].Currency)
	require.Equal(t, float64(400), summary.Totals[0].Value)
	require.Equal(t, "EUR 400.00", summary.Totals[0].Formatted)

	require.Equal(t, "USD", summary.Totals[1].Currency)
	require.Equal(t, float64(29000), summary.Totals[1].Value)
	require.Equal(t, "USD 29,000.00", summary.Totals[1].Formatted)

	// A client cannot read another client's portfolio.
	_, err = svc.Summarize(context.Background(), owner, 2)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}
