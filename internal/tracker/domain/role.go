package domain

// Role is one of the fixed account roles the tracker API assigns to users.
// Route access and UI affordances are gated on role-set membership.
type Role string

const (
	RoleSales    Role = "Sales"
	RoleEngineer Role = "Engineer"
	RoleAdmin    Role = "Admin"
)

// AllRoles lists every role the tracker knows about, in ascending privilege
// order. Sales is the default for accounts with no explicit role grants.
var AllRoles = []Role{RoleSales, RoleEngineer, RoleAdmin}

// ParseRoles converts raw role claim strings into Roles, dropping anything
// the client does not recognise. Unknown roles grant nothing.
func ParseRoles(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		switch Role(r) {
		case RoleSales, RoleEngineer, RoleAdmin:
			roles = append(roles, Role(r))
		}
	}
	return roles
}

// Strings returns the string form of a role set, for request payloads.
func Strings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
