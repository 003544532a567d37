// Package authz decides, for an acting user, a requested permission, and an
// optional target entity, whether the action is allowed. Decisions are pure
// functions of their inputs plus the immutable role policy table: no I/O, no
// caching, no side effects. Denial is a normal outcome, never an error, and
// every missing, unknown, or ambiguous input denies.
package authz

// Evaluator answers permission queries. The zero value is ready to use and
// safe for concurrent callers.
type Evaluator struct{}

// HasPermission reports whether the principal may perform the action named by
// perm against the given resource. A nil resource means the check is general
// (role defaults plus custom grants only). A nil principal or empty
// permission always denies. Admins are allowed unconditionally.
func (Evaluator) HasPermission(p *Principal, perm Permission, res Resource) bool {
	if p == nil || perm == "" {
		return false
	}
	if p.Role == RoleAdmin {
		return true
	}
	if res == nil {
		return p.generalPermissions().Has(perm)
	}
	return hasEntityPermission(p, perm, res)
}

// hasEntityPermission handles checks that carry a target entity. The admin
// fast path has already run; this layer gates on the general permission set
// and then requires the ownership predicate for the resource's variant to
// hold. Ownership alone never substitutes for the base grant.
func hasEntityPermission(p *Principal, perm Permission, res Resource) bool {
	// Guests never pass entity-scoped checks, custom grants included.
	// Resource-scoped actions are client/employee/admin territory.
	if p.Role == RoleGuest {
		return false
	}
	if !p.generalPermissions().Has(perm) {
		return false
	}
	switch ref := res.(type) {
	case ClientRef:
		if p.EmployeeID != 0 && ref.AssignedEmployeeID == p.EmployeeID {
			return true
		}
		// A client may act on their own profile.
		return ref.OwnerUserID == p.ID
	case InvestmentRef:
		return ref.OwnerUserID == p.ID
	case UserAccountRef:
		return ref.ID == p.ID
	case EmployeeRef:
		// The assigned-counterpart relationship is not denormalized into
		// EmployeeRef, so checks against one (partner messaging included)
		// deny here; the messaging service verifies the assignment itself.
		return false
	default:
		// Unknown resource shapes are never implicitly trusted.
		return false
	}
}
