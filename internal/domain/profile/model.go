package profile

import (
	"errors"
	"time"
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleClient}

// Domain errors
var (
	ErrEmptyID     = errors.New("profile id cannot be empty")
	ErrInvalidRole = errors.New("role must be one of: admin, client")
)

// Profile carries the role of an account. Its ID equals the account ID.
type Profile struct {
	ID        string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if !IsValidRole(p.Role) {
		return ErrInvalidRole
	}
	return nil
}

// IsAdmin returns true if the profile has admin role.
// INVARIANT: Profile fields are not mutated
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
