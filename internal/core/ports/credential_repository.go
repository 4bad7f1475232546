package ports

import (
	"context"
	"time"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// UpdateCredentialInput carries a partial credential edit. Nil fields are
// left untouched by the merge.
type UpdateCredentialInput struct {
	Email      *string
	Role       *string
	Name       *string
	Department *string
	Position   *string
	Phone      *string
	Address    *string
	HireDate   *time.Time
	BirthDate  *time.Time
}

// CredentialRepository defines persistence operations for user credentials.
type CredentialRepository interface {
	Create(ctx context.Context, c *domain.Credential) (*domain.Credential, error)
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
	FindByID(ctx context.Context, id string) (*domain.Credential, error)
	// Update applies a partial merge of the provided fields.
	Update(ctx context.Context, id string, in UpdateCredentialInput) (*domain.Credential, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of credentials and the total count.
	List(ctx context.Context, page, limit int) ([]*domain.Credential, int64, error)
	// SetPasswordHashIfEmpty persists hash only when the stored hash is still
	// the empty bootstrap sentinel. It reports whether the write took effect,
	// so a concurrent first login can be detected and re-verified.
	SetPasswordHashIfEmpty(ctx context.Context, id, hash string) (bool, error)
}
