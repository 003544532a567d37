package authz

import "fmt"

// Role is a user's access level. The order guest < client < employee < admin
// documents privilege direction only; decisions always use the explicit
// per-role default sets below, never the ordering.
type Role string

const (
	RoleGuest    Role = "guest"
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role name as stored in the users table.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleGuest, RoleClient, RoleEmployee, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("authz: unknown role %q", raw)
}

// rolePolicy maps each role to its default permission set. Built once at
// package init and treated as read-only; DefaultPermissions hands out copies.
var rolePolicy = map[Role]Set{
	RoleGuest: NewSet(
		PermViewAccount,
		PermEditOwnDetails,
		PermUpdateOwnPassword,
		PermRegisterUser,
		PermRequestClientAccount,
	),
	RoleClient: NewSet(
		PermViewAccount,
		PermEditOwnDetails,
		PermUpdateOwnPassword,
		PermRegisterUser,
		PermViewInvestment,
		PermMessagePartner,
	),
	RoleEmployee: NewSet(
		PermViewAccount,
		PermEditOwnDetails,
		PermUpdateOwnPassword,
		PermRegisterUser,
		PermCreateInvestment,
		PermEditInvestment,
		PermCreateClient,
		PermEditClient,
		PermViewClient,
		PermViewClients,
		PermAssignClient,
		PermViewEmployee,
		PermViewEmployees,
	),
	// Admins hold the entire catalog. Derived, never hand-listed, so the row
	// stays complete as permissions are added.
	RoleAdmin: NewSet(Catalog()...),
}

// DefaultPermissions returns the default permission set for a role. Unknown
// or empty roles get an empty set. The returned set is a copy; callers may
// mutate it without affecting later queries.
func DefaultPermissions(role Role) Set {
	defaults, ok := rolePolicy[role]
	if !ok {
		return Set{}
	}
	return defaults.Clone()
}
