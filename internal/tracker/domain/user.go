package domain

// User is a tracker account as returned by the remote API. The API exposes
// Mongo-style `_id` identifiers; the client treats them as opaque strings.
type User struct {
	ID       string   `json:"_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   bool     `json:"active"`
}

// RoleSet parses the user's raw role strings into known Roles.
func (u User) RoleSet() []Role {
	return ParseRoles(u.Roles)
}
