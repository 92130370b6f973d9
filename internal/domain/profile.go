package domain

import "time"

// UserRole enumerates the roles a profile can hold.
type UserRole string

const (
	RoleCitizen   UserRole = "citizen"
	RoleL1Officer UserRole = "l1_officer"
	RoleL2Officer UserRole = "l2_officer"
	RoleAdmin     UserRole = "admin"
)

// DefaultMaxAdminSeats caps admin profiles system-wide; checked at officer
// creation and promotion time, not by the sweep components.
const DefaultMaxAdminSeats = 2

// ValidRole reports whether r is a known role.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleCitizen, RoleL1Officer, RoleL2Officer, RoleAdmin:
		return true
	}
	return false
}

// IsOfficer reports whether the role belongs to an escalation tier.
func (r UserRole) IsOfficer() bool {
	return r == RoleL1Officer || r == RoleL2Officer
}

// Profile models every account: citizens, both officer tiers and admins.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	Phone        *string
	PasswordHash string
	Role         UserRole
	Department   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
