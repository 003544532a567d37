package authz

// Permission is one named capability from the closed platform catalog.
type Permission string

// Account and self-service permissions.
const (
	PermViewAccount          Permission = "account.view"
	PermEditOwnDetails       Permission = "account.edit_own"
	PermUpdateOwnPassword    Permission = "account.password_own"
	PermRegisterUser         Permission = "account.register"
	PermRequestClientAccount Permission = "account.request_client"
	PermViewAccounts         Permission = "account.view_all"
)

// Client management permissions.
const (
	PermCreateClient Permission = "clients.create"
	PermEditClient   Permission = "clients.edit"
	PermViewClient   Permission = "clients.view"
	PermViewClients  Permission = "clients.list"
	PermAssignClient Permission = "clients.assign"
	PermDeleteClient Permission = "clients.delete"
)

// Investment permissions.
const (
	PermCreateInvestment Permission = "investments.create"
	PermEditInvestment   Permission = "investments.edit"
	PermViewInvestment   Permission = "investments.view"
)

// Employee management permissions.
const (
	PermViewEmployee   Permission = "employees.view"
	PermViewEmployees  Permission = "employees.list"
	PermCreateEmployee Permission = "employees.create"
	PermEditEmployee   Permission = "employees.edit"
)

// User administration permissions.
const (
	PermEditUser            Permission = "users.edit"
	PermDeleteUser          Permission = "users.delete"
	PermUpdateOtherPassword Permission = "users.password_other"
)

// Messaging permissions.
const (
	PermMessagePartner Permission = "messages.partner"
)

// Catalog lists every permission the platform knows about. The admin role
// default set is derived from this list, so a permission added here is
// automatically held by admins.
func Catalog() []Permission {
	return []Permission{
		PermViewAccount,
		PermEditOwnDetails,
		PermUpdateOwnPassword,
		PermRegisterUser,
		PermRequestClientAccount,
		PermViewAccounts,
		PermCreateClient,
		PermEditClient,
		PermViewClient,
		PermViewClients,
		PermAssignClient,
		PermDeleteClient,
		PermCreateInvestment,
		PermEditInvestment,
		PermViewInvestment,
		PermViewEmployee,
		PermViewEmployees,
		PermCreateEmployee,
		PermEditEmployee,
		PermEditUser,
		PermDeleteUser,
		PermUpdateOtherPassword,
		PermMessagePartner,
	}
}

// AdminOnly lists the permissions that no non-admin role holds by default.
func AdminOnly() []Permission {
	return []Permission{
		PermEditUser,
		PermDeleteUser,
		PermEditEmployee,
		PermCreateEmployee,
		PermUpdateOtherPassword,
		PermViewAccounts,
	}
}

// ParsePermission validates a raw permission name against the catalog.
func ParsePermission(raw string) (Permission, bool) {
	p := Permission(raw)
	if _, ok := catalogSet[p]; !ok {
		return "", false
	}
	return p, true
}

var catalogSet = NewSet(Catalog()...)
