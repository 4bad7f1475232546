package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/hr-portal/internal/api/metrics"
	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

const (
	defaultTokenTTL = 7 * 24 * time.Hour
	bcryptCost      = 12

	// identityCacheTTL bounds how long a sanitized identity may be served
	// from cache without re-reading the credential store.
	identityCacheTTL = 5 * time.Minute
)

// IdentityCache abstracts the short-lived sanitized-identity cache on the
// verify path (Redis in production, stub in tests).
type IdentityCache interface {
	Get(ctx context.Context, token string) (*domain.Credential, bool)
	Set(ctx context.Context, token string, identity *domain.Credential, ttl time.Duration)
	Drop(ctx context.Context, token string)
}

// AuthService implements the session manager: bootstrap-aware authentication,
// token issuance, verification against the dual token+session mechanism, and
// revocation.
type AuthService struct {
	creds     ports.CredentialRepository
	sessions  ports.SessionRepository
	cache     IdentityCache
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	creds ports.CredentialRepository,
	sessions ports.SessionRepository,
	cache IdentityCache,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		creds:     creds,
		sessions:  sessions,
		cache:     cache,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// Register creates a credential. An empty password stores the bootstrap
// sentinel: the account becomes usable on its first login.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
	if in.Email == "" || !domain.ValidRole(in.Role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash := ""
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	now := s.now().UTC()
	cred := &domain.Credential{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Profile:      in.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.creds.Create(ctx, cred)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("credential created")
	return created.Sanitized(), nil
}

// Authenticate resolves the credential, bootstraps the password on an invite
// account's first login, verifies it otherwise, and issues a token. Lookup
// and verification failures collapse into ErrInvalidCredentials so callers
// cannot enumerate accounts.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *domain.Credential, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if cred.PasswordHash == "" {
		cred, err = s.bootstrapPassword(ctx, cred, password)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return "", nil, err
		}
	} else if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueFor(ctx, cred)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, cred.Sanitized(), nil
}

// bootstrapPassword sets the supplied password as the permanent hash. The
// conditional write only succeeds while the stored hash is still empty; when
// a concurrent first login wins the race, the credential is re-read and the
// password verified against the winner's hash.
func (s *AuthService) bootstrapPassword(ctx context.Context, cred *domain.Credential, password string) (*domain.Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	set, err := s.creds.SetPasswordHashIfEmpty(ctx, cred.ID, string(hash))
	if err != nil {
		return nil, err
	}
	if !set {
		fresh, err := s.creds.FindByID(ctx, cred.ID)
		if err != nil {
			return nil, domain.ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword([]byte(fresh.PasswordHash), []byte(password)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		return fresh, nil
	}

	metrics.BootstrapLoginsTotal.Inc()
	s.log.Info().Str("user_id", cred.ID).Msg("bootstrap password set")

	clone := *cred
	clone.PasswordHash = string(hash)
	return &clone, nil
}

// issueFor generates a signed token and its session record for the
// authenticated credential.
func (s *AuthService) issueFor(ctx context.Context, cred *domain.Credential) (string, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"sub":   cred.ID,
		"email": cred.Email,
		"role":  cred.Role,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    cred.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// Verify checks the token signature and claims, then requires a live session
// record for the exact token. The signed token alone is necessary but not
// sufficient: a deleted or expired session record rejects the caller even
// when the signature still validates.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Credential, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		// count only true revocations; a storage failure is not a rejection
		if errors.Is(err, domain.ErrSessionExpired) {
			metrics.TokenVerificationsTotal.WithLabelValues("session_expired").Inc()
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.DeleteByToken(ctx, token)
		s.cache.Drop(ctx, token)
		metrics.TokenVerificationsTotal.WithLabelValues("session_expired").Inc()
		return nil, domain.ErrSessionExpired
	}

	if identity, ok := s.cache.Get(ctx, token); ok {
		metrics.TokenVerificationsTotal.WithLabelValues("success").Inc()
		return identity, nil
	}

	cred, err := s.creds.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			// account deleted while the session was live
			_ = s.sessions.DeleteByToken(ctx, token)
			metrics.TokenVerificationsTotal.WithLabelValues("session_expired").Inc()
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}

	identity := cred.Sanitized()
	ttl := identityCacheTTL
	if until := session.ExpiresAt.Sub(s.now()); until < ttl {
		ttl = until
	}
	s.cache.Set(ctx, token, identity, ttl)

	metrics.TokenVerificationsTotal.WithLabelValues("success").Inc()
	return identity, nil
}

// Revoke deletes the session record for the token. Revoking twice is not an error.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return err
	}
	s.cache.Drop(ctx, token)
	return nil
}
