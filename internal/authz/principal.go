package authz

// Principal is the acting user's identity and permission state for one
// evaluation. Grants are strictly additive on top of the role defaults: a
// principal's effective general permissions are always a superset of
// DefaultPermissions(Role).
type Principal struct {
	ID   int64
	Role Role
	// EmployeeID is the employee profile bound to this user, 0 when the user
	// has none. Client-assignment checks compare against it.
	EmployeeID int64
	Grants     Set
}

// generalPermissions is the union of the role defaults and custom grants.
func (p *Principal) generalPermissions() Set {
	return DefaultPermissions(p.Role).Union(p.Grants)
}
