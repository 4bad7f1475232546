package ports

import (
	"context"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// EmployeeService exposes the credential store to the admin/HR screens.
// Every credential it returns is sanitized.
type EmployeeService interface {
	Get(ctx context.Context, id string) (*domain.Credential, error)
	Update(ctx context.Context, id string, in UpdateCredentialInput) (*domain.Credential, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]*domain.Credential, int64, error)
}
