package handler

import (
	"time"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email      string     `json:"email"      validate:"required,email"`
	Password   string     `json:"password"` // empty = invite, bootstrapped on first login
	Role       string     `json:"role"       validate:"required,oneof=admin hr employee"`
	Name       string     `json:"name"       validate:"required"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	HireDate   *time.Time `json:"hire_date"`
	BirthDate  *time.Time `json:"birth_date"`
}

type authResponse struct {
	Token string             `json:"token,omitempty"`
	User  *domain.Credential `json:"user,omitempty"`
}
