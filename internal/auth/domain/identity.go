package domain

import "strings"

// Identity is the authenticated principal behind a request. It is resolved by
// the auth middleware and never changes for the lifetime of the request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// NormalizedEmail is the identity's email in its stored form.
func (i Identity) NormalizedEmail() string {
	return NormalizeEmail(i.Email)
}

// NormalizeEmail is the canonical form of a mailbox address. Every value that
// is stored or compared as an email goes through here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail reports whether a and b name the same mailbox.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
