package ports

import (
	"context"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// RegisterInput carries a new account. An empty Password creates an invite
// account whose password is set on the first login.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
	Profile  domain.Profile
}

// AuthService is the session manager: credential bootstrap, token issuance,
// verification, and revocation.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Credential, error)
	// Authenticate verifies email+password (bootstrapping the password on an
	// invite account's first login) and returns a bearer token plus the
	// sanitized identity.
	Authenticate(ctx context.Context, email, password string) (string, *domain.Credential, error)
	// Verify validates the token signature and the live session record, then
	// resolves the sanitized identity.
	Verify(ctx context.Context, token string) (*domain.Credential, error)
	// Revoke deletes the session record for the token. Idempotent.
	Revoke(ctx context.Context, token string) error
}
