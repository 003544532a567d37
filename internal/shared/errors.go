package shared

import "errors"

// Sentinel errors shared across the domain packages. Handlers map them to
// problem responses; services return them untouched so callers can errors.Is.
var (
	// ErrNotFound covers missing rows. Services also return it for rows the
	// caller is not allowed to learn exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is the single login failure: unknown email,
	// deactivated account and wrong password are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing rejects mutating requests without a CSRF header.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch rejects CSRF headers that fail verification.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
