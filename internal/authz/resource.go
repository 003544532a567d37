package authz

// Resource is a flattened reference to the entity an action targets. It is a
// closed union: each variant carries just enough denormalized identity for
// the evaluator to decide ownership without further lookups. Callers build a
// variant from already-loaded rows; a nil Resource means the check carries no
// entity context.
type Resource interface {
	isResource()
}

// ClientRef identifies a client profile.
type ClientRef struct {
	ID                 int64
	OwnerUserID        int64
	AssignedEmployeeID int64
}

// EmployeeRef identifies an employee profile.
type EmployeeRef struct {
	ID          int64
	OwnerUserID int64
}

// InvestmentRef identifies an investment; OwnerUserID is the user account of
// the client who owns it.
type InvestmentRef struct {
	ID          int64
	OwnerUserID int64
}

// UserAccountRef identifies a user account.
type UserAccountRef struct {
	ID int64
}

func (ClientRef) isResource()      {}
func (EmployeeRef) isResource()    {}
func (InvestmentRef) isResource()  {}
func (UserAccountRef) isResource() {}
