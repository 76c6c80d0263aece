package auth

import (
	"fmt"
	"strings"
)

// Role is the account lifecycle / access level.
type Role string

const (
	// RolePending marks a freshly registered account awaiting approval.
	// It is never grantable for access and blocks sign-in entirely.
	RolePending Role = "pending"
	// RoleUser may act only on resources it owns.
	RoleUser Role = "user"
	// RoleAdmin has unrestricted access to actions listing it.
	RoleAdmin Role = "admin"
	// RoleSuperadmin has unrestricted access to actions listing it.
	RoleSuperadmin Role = "superadmin"
)

// ParseRole normalizes raw input into a known role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RolePending:
		return RolePending, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperadmin:
		return RoleSuperadmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// AllowSet is the static list of roles permitted to invoke an action.
// An empty set means the action is public.
type AllowSet []Role

func (s AllowSet) Contains(r Role) bool {
	for _, role := range s {
		if role == r {
			return true
		}
	}
	return false
}
