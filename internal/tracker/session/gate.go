package session

import "github.com/redhill/reqtrack/internal/tracker/domain"

// Decision is the outcome of a route authorization check. Denials preserve
// the attempted route so the UI can return the user there after login.
type Decision struct {
	Allowed   bool
	Attempted string
}

// Authorize gates a protected route on role-set membership: access is
// allowed iff the identity holds at least one required role. It is pure and
// synchronous, evaluated from already-decoded claims on every navigation;
// no network call is involved.
func Authorize(id domain.Identity, route string, required ...domain.Role) Decision {
	return Decision{
		Allowed:   id.HasAnyRole(required...),
		Attempted: route,
	}
}
