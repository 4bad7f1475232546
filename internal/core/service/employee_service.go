package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

// EmployeeService fronts the credential store for the admin/HR screens.
// Cascading cleanup of a deleted employee's requests and balances is left to
// the callers that own those records.
type EmployeeService struct {
	creds    ports.CredentialRepository
	sessions ports.SessionRepository
	log      zerolog.Logger
}

func NewEmployeeService(creds ports.CredentialRepository, sessions ports.SessionRepository, log zerolog.Logger) *EmployeeService {
	return &EmployeeService{creds: creds, sessions: sessions, log: log}
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*domain.Credential, error) {
	cred, err := s.creds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cred.Sanitized(), nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, in ports.UpdateCredentialInput) (*domain.Credential, error) {
	if in.Role != nil && !domain.ValidRole(*in.Role) {
		return nil, domain.ErrForbidden
	}
	updated, err := s.creds.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Msg("credential updated")
	return updated.Sanitized(), nil
}

// Delete removes the credential and revokes every live session the account
// still holds, so a deactivated employee cannot keep using an issued token.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.creds.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.DeleteByUser(ctx, id); err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("session cleanup failed")
	}
	s.log.Info().Str("user_id", id).Msg("credential deleted")
	return nil
}

func (s *EmployeeService) List(ctx context.Context, page, limit int) ([]*domain.Credential, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	creds, total, err := s.creds.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	sanitized := make([]*domain.Credential, 0, len(creds))
	for _, c := range creds {
		sanitized = append(sanitized, c.Sanitized())
	}
	return sanitized, total, nil
}
