// Package models defines the shared row, role, and document types used by the
// synthesis pipeline and the retrieval service.
package models

import "fmt"

// Role identifies one of the fixed concierge-team personas. The set is closed;
// use ParseRole to validate free-form input at the boundaries.
type Role string

const (
	RoleRuby     Role = "Ruby"
	RoleDrWarren Role = "Dr. Warren"
	RoleAdvik    Role = "Advik"
	RoleCarla    Role = "Carla"
	RoleRachel   Role = "Rachel"
	RoleNeel     Role = "Neel"
)

// DefaultRole is the concierge fallback used when routing is ambiguous.
const DefaultRole = RoleRuby

// AllRoles returns the closed role set in canonical order.
func AllRoles() []Role {
	return []Role{RoleRuby, RoleDrWarren, RoleAdvik, RoleCarla, RoleRachel, RoleNeel}
}

// Valid reports whether r names a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleRuby, RoleDrWarren, RoleAdvik, RoleCarla, RoleRachel, RoleNeel:
		return true
	default:
		return false
	}
}

// String returns the persona's display name.
func (r Role) String() string { return string(r) }

// ParseRole validates a role name. It returns an error wrapping ErrRoleNotFound
// for anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrRoleNotFound, s)
	}
	return r, nil
}
