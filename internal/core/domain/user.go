package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

var ErrDuplicateEmail = errors.New("email already registered")
var ErrCredentialNotFound = errors.New("credential not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// ValidRole reports whether role is one of the known portal roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleHR || role == RoleEmployee
}

// Profile holds the HR attributes attached to a credential. All fields are
// filled in by admin or self-service edits.
type Profile struct {
	Name       string     `json:"name" bson:"name"`
	Department string     `json:"department,omitempty" bson:"department,omitempty"`
	Position   string     `json:"position,omitempty" bson:"position,omitempty"`
	Phone      string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Address    string     `json:"address,omitempty" bson:"address,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty" bson:"hire_date,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
}

// Credential models a portal user: identity, authentication material, and
// profile. An empty PasswordHash marks an invite-created account that has not
// completed its first (bootstrap) login yet.
type Credential struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand outside the session manager: the
// password hash is stripped.
func (c *Credential) Sanitized() *Credential {
	if c == nil {
		return nil
	}
	clone := *c
	clone.PasswordHash = ""
	return &clone
}
