package domain

import "slices"

// Identity is the client's non-authoritative view of who is logged in,
// derived from the current access token's claims. It is recomputed from the
// token on every read and never cached independently, so it cannot go stale
// relative to the credential store. It gates UI only; the server remains the
// security boundary.
type Identity struct {
	UserID   int64
	Username string
	Roles    []Role

	IsEngineer bool
	IsAdmin    bool

	// Status is the display string for the most privileged role held:
	// Admin over Engineer over the Sales default.
	Status string
}

// EmptyIdentity is what every derivation degrades to when no token is
// present or the token fails to decode.
func EmptyIdentity() Identity {
	return Identity{Roles: []Role{}, Status: string(RoleSales)}
}

// NewIdentity builds an Identity from decoded token claims, applying the
// Admin > Engineer > Sales status tie-break.
func NewIdentity(userID int64, username string, roles []Role) Identity {
	id := Identity{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		Status:   string(RoleSales),
	}

	id.IsEngineer = slices.Contains(roles, RoleEngineer)
	id.IsAdmin = slices.Contains(roles, RoleAdmin)

	if id.IsEngineer {
		id.Status = string(RoleEngineer)
	}
	if id.IsAdmin {
		id.Status = string(RoleAdmin)
	}

	return id
}

// HasAnyRole reports whether the identity holds at least one of the required
// roles. An empty requirement set matches nothing.
func (id Identity) HasAnyRole(required ...Role) bool {
	for _, want := range required {
		if slices.Contains(id.Roles, want) {
			return true
		}
	}
	return false
}
