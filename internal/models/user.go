package models

import (
	"slices"
	"strings"
	"time"
)

// Role is the access role of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ValidRoles defines the available roles in the system
var ValidRoles = []Role{
	RoleAdmin,
	RoleEmployee,
}

// Valid reports whether r is one of ValidRoles
func (r Role) Valid() bool {
	return slices.Contains(ValidRoles, r)
}

// HomePath returns the landing route of the role's dashboard
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/admin"
	}
	return "/employee"
}

// ParseRole parses a role name, ignoring case and surrounding space
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", &EnumError{Type: "role", Value: s}
	}
	return r, nil
}

// User represents a user in the system
type User struct {
	ID         string    `json:"id" yaml:"id"`
	Email      string    `json:"email" yaml:"email"`
	Name       string    `json:"name" yaml:"name"`
	Role       Role      `json:"role" yaml:"role"`
	Department string    `json:"department" yaml:"department"`
	Phone      *string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Avatar     *string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	IsActive   bool      `json:"isActive" yaml:"isActive"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// HasRole checks if the user has any of the specified roles
func (u *User) HasRole(roles ...Role) bool {
	return slices.Contains(roles, u.Role)
}

// EmailMatches compares the user's email against addr case-insensitively
func (u *User) EmailMatches(addr string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(addr))
}

// UserInput is the request body for creating a user or replacing one.
// A nil IsActive means active on create and unchanged on update.
type UserInput struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       Role    `json:"role"`
	Department string  `json:"department"`
	Phone      *string `json:"phone,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

// ProfileUpdate is a partial set of user fields the principal may edit
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Apply shallow-merges the non-nil fields into u
func (p ProfileUpdate) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	return u
}

// Empty reports whether the update carries no fields
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Avatar == nil
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by the login endpoint for both outcomes
type LoginResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}
