package identity

import (
	"strings"

	"github.com/sibarkumen/backend/internal/domain/shared"
)

// Role is the closed set of roles a session can carry.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleStaff      Role = "staff"
)

// AllRoles lists every known role.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSupervisor, RoleStaff}
}

// ErrUnknownRole is returned when a role label does not name a known role.
var ErrUnknownRole = shared.NewDomainError("INVALID_ROLE", "Unknown role")

// ParseRole converts a stored or submitted role label into a Role.
// Labels are matched case-insensitively and surrounding whitespace is ignored.
func ParseRole(label string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(label)))
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleStaff:
		return true
	}
	return false
}

// In reports whether r is one of the allowed roles.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// String returns the canonical label.
func (r Role) String() string {
	return string(r)
}
