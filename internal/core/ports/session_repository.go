package ports

import (
	"context"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// SessionRepository defines persistence for the server-side revocation list.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	// FindByToken returns the session record for the exact token, or
	// domain.ErrSessionExpired when no record exists (revoked or swept).
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	// DeleteByToken removes the session record. Deleting a token that has no
	// record is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteByUser removes every session of a user (admin deactivation).
	DeleteByUser(ctx context.Context, userID string) error
}
