// Package authz holds the ownership and role decision functions every
// mutating endpoint consults before persisting a write. All functions are
// pure; callers translate a false result into a forbidden response rather
// than silently ignoring the request.
package authz

// Role is the coarse permission level carried in the bearer credential.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is the authenticated caller, reconstructed per request from the
// bearer credential. It is never persisted beyond request scope.
type Principal struct {
	UserID string
	Role   Role
}

// IsOwnerOrAdmin reports whether the caller may mutate a resource owned by
// ownerID: either they own it or they are an admin.
func IsOwnerOrAdmin(p Principal, ownerID string) bool {
	return p.UserID == ownerID || p.Role == RoleAdmin
}

// HasRole reports whether the caller holds one of the allowed roles.
func HasRole(p Principal, allowed ...Role) bool {
	for _, r := range allowed {
		if p.Role == r {
			return true
		}
	}
	return false
}
