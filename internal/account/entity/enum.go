package entity

import "strings"

// Role is the authorization role of an account.
type Role string

const (
	// RoleUser is the default role given at registration.
	RoleUser Role = "user"
	// RoleAdmin may administer other accounts.
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole normalizes s into a Role. Empty input yields RoleUser; unknown
// input is returned as-is so validation can reject it.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleUser
	}
	return Role(s)
}
