package models

import "fmt"

// Role determines which operations a user may invoke.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw string into a Role.
// An empty string yields the default seeker role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleSeeker, nil
	case RoleSeeker, RoleEmployer, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick this role on their own
// (at registration or via a role update). Admins are seeded, never chosen.
func (r Role) SelfAssignable() bool {
	return r == RoleSeeker || r == RoleEmployer
}

func (r Role) String() string { return string(r) }
