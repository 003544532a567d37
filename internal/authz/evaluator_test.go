package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasPermissionNilInputs(t *testing.T) {
	var eval Evaluator

	require.False(t, eval.HasPermission(nil, PermViewAccount, nil))
	require.False(t, eval.HasPermission(nil, PermViewClient, ClientRef{ID: 1}))

	client := &Principal{ID: 1, Role: RoleClient}
	require.False(t, eval.HasPermission(client, "", nil))
	require.False(t, eval.HasPermission(client, "", UserAccountRef{ID: 1}))
}

func TestHasPermissionAdminBypass(t *testing.T) {
	var eval Evaluator
	admin := &Principal{ID: 99, Role: RoleAdmin}

	for _, perm := range Catalog() {
		require.True(t, eval.HasPermission(admin, perm, nil), "admin denied %s", perm)
		require.True(t, eval.HasPermission(admin, perm, ClientRef{ID: 5, OwnerUserID: 7, AssignedEmployeeID: 3}))
		require.True(t, eval.HasPermission(admin, perm, InvestmentRef{ID: 5, OwnerUserID: 7}))
		require.True(t, eval.HasPermission(admin, perm, UserAccountRef{ID: 5}))
		require.True(t, eval.HasPermission(admin, perm, EmployeeRef{ID: 5, OwnerUserID: 7}))
	}
}

func TestHasPermissionGeneral(t *testing.T) {
	var eval Evaluator

	guest := &Principal{ID: 1, Role: RoleGuest}
	require.True(t, eval.HasPermission(guest, PermRegisterUser, nil))
	require.True(t, eval.HasPermission(guest, PermRequestClientAccount, nil))
	require.False(t, eval.HasPermission(guest, PermViewClients, nil))

	employee := &Principal{ID: 2, Role: RoleEmployee, EmployeeID: 10}
	require.True(t, eval.HasPermission(employee, PermViewClients, nil))
	require.False(t, eval.HasPermission(employee, PermDeleteUser, nil))
}

func TestHasPermissionCustomGrantsAreAdditive(t *testing.T) {
	var eval Evaluator

	plain := &Principal{ID: 3, Role: RoleClient}
	require.False(t, eval.HasPermission(plain, PermViewClients, nil))

	granted := &Principal{ID: 3, Role: RoleClient, Grants: NewSet(PermViewClients)}
	require.True(t, eval.HasPermission(granted, PermViewClients, nil))
	// Role defaults remain intact alongside the grant.
	require.True(t, eval.HasPermission(granted, PermViewInvestment, nil))
}

func TestHasPermissionClientRefAssignment(t *testing.T) {
	var eval Evaluator
	employee := &Principal{ID: 2, Role: RoleEmployee, EmployeeID: 10}

	mine := ClientRef{ID: 100, OwnerUserID: 30, AssignedEmployeeID: 10}
	other := ClientRef{ID: 101, OwnerUserID: 31, AssignedEmployeeID: 11}

	require.True(t, eval.HasPermission(employee, PermViewClient, mine))
	require.False(t, eval.HasPermission(employee, PermViewClient, other))
	require.True(t, eval.HasPermission(employee, PermEditClient, mine))
	require.False(t, eval.HasPermission(employee, PermEditClient, other))
}

func TestHasPermissionClientRefSelfView(t *testing.T) {
	var eval Evaluator
	// A client granted clients.view may see their own profile, not others.
	owner := &Principal{ID: 30, Role: RoleClient, Grants: NewSet(PermViewClient)}

	own := ClientRef{ID: 100, OwnerUserID: 30, AssignedEmployeeID: 10}
	foreign := ClientRef{ID: 101, OwnerUserID: 31, AssignedEmployeeID: 10}

	require.True(t, eval.HasPermission(owner, PermViewClient, own))
	require.False(t, eval.HasPermission(owner, PermViewClient, foreign))
}

func TestHasPermissionInvestmentOwnership(t *testing.T) {
	var eval Evaluator
	client := &Principal{ID: 30, Role: RoleClient}

	owned := InvestmentRef{ID: 1, OwnerUserID: 30}
	foreign := InvestmentRef{ID: 2, OwnerUserID: 31}

	require.True(t, eval.HasPermission(client, PermViewInvestment, owned))
	require.False(t, eval.HasPermission(client, PermViewInvestment, foreign))
}

func TestHasPermissionUserAccountSelf(t *testing.T) {
	var eval Evaluator
	client := &Principal{ID: 30, Role: RoleClient}

	require.True(t, eval.HasPermission(client, PermEditOwnDetails, UserAccountRef{ID: 30}))
	require.False(t, eval.HasPermission(client, PermEditOwnDetails, UserAccountRef{ID: 31}))
	require.True(t, eval.HasPermission(client, PermUpdateOwnPassword, UserAccountRef{ID: 30}))
	require.False(t, eval.HasPermission(client, PermUpdateOwnPassword, UserAccountRef{ID: 31}))
}

func TestHasPermissionAdminOnlyKindsDenyNonAdmins(t *testing.T) {
	var eval Evaluator
	employee := &Principal{ID: 2, Role: RoleEmployee, EmployeeID: 10}

	// Ownership never substitutes for the base grant: even "their own"
	// account cannot be deleted without the admin-only permission.
	require.False(t, eval.HasPermission(employee, PermDeleteUser, UserAccountRef{ID: 2}))
	require.False(t, eval.HasPermission(employee, PermUpdateOtherPassword, UserAccountRef{ID: 3}))
}

func TestHasPermissionGuestHardDenyOnEntities(t *testing.T) {
	var eval Evaluator
	// A guest with a custom grant still fails every entity-scoped check.
	guest := &Principal{ID: 5, Role: RoleGuest, Grants: NewSet(PermViewClient, PermEditOwnDetails)}

	require.False(t, eval.HasPermission(guest, PermViewClient, ClientRef{ID: 1, OwnerUserID: 5}))
	require.False(t, eval.HasPermission(guest, PermEditOwnDetails, UserAccountRef{ID: 5}))
	// The same grants still work on the general path.
	require.True(t, eval.HasPermission(guest, PermViewClient, nil))
}

func TestHasPermissionEmployeeRefDenies(t *testing.T) {
	var eval Evaluator
	client := &Principal{ID: 30, Role: RoleClient}

	// Partner messaging against an employee entity denies: the assignment
	// relationship is not carried on EmployeeRef.
	require.False(t, eval.HasPermission(client, PermMessagePartner, EmployeeRef{ID: 10, OwnerUserID: 2}))
}

func TestHasPermissionUnknownResourceDenies(t *testing.T) {
	var eval Evaluator
	employee := &Principal{ID: 2, Role: RoleEmployee, EmployeeID: 10}

	require.False(t, eval.HasPermission(employee, PermViewClient, unknownRef{}))
}

type unknownRef struct{}

func (unknownRef) isResource() {}

func TestHasPermissionIsIdempotent(t *testing.T) {
	var eval Evaluator
	employee := &Principal{ID: 2, Role: RoleEmployee, EmployeeID: 10}
	ref := ClientRef{ID: 100, OwnerUserID: 30, AssignedEmployeeID: 10}

	for i := 0; i < 100; i++ {
		require.True(t, eval.HasPermission(employee, PermViewClient, ref))
		require.False(t, eval.HasPermission(employee, PermViewClient, ClientRef{ID: 101, AssignedEmployeeID: 11}))
	}
}
