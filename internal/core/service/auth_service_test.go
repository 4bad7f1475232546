package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/hr-portal/internal/api/metrics"
	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

type stubCredRepo struct {
	creds map[string]*domain.Credential
	seq   int
	finds int
}

func newStubCredRepo() *stubCredRepo {
	return &stubCredRepo{creds: make(map[string]*domain.Credential)}
}

func cloneCred(c *domain.Credential) *domain.Credential {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (r *stubCredRepo) Create(_ context.Context, c *domain.Credential) (*domain.Credential, error) {
	for _, existing := range r.creds {
		if existing.Email == c.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.seq++
	copy := cloneCred(c)
	copy.ID = fmt.Sprintf("cred_%d", r.seq)
	r.creds[copy.ID] = cloneCred(copy)
	return copy, nil
}

func (r *stubCredRepo) FindByEmail(_ context.Context, email string) (*domain.Credential, error) {
	for _, c := range r.creds {
		if c.Email == email {
			return cloneCred(c), nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}

func (r *stubCredRepo) FindByID(_ context.Context, id string) (*domain.Credential, error) {
	r.finds++
	c, ok := r.creds[id]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return cloneCred(c), nil
}

func (r *stubCredRepo) Update(_ context.Context, id string, in ports.UpdateCredentialInput) (*domain.Credential, error) {
	c, ok := r.creds[id]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	if in.Name != nil {
		c.Profile.Name = *in.Name
	}
	if in.Role != nil {
		c.Role = *in.Role
	}
	return cloneCred(c), nil
}

func (r *stubCredRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.creds[id]; !ok {
		return domain.ErrCredentialNotFound
	}
	delete(r.creds, id)
	return nil
}

func (r *stubCredRepo) List(_ context.Context, page, limit int) ([]*domain.Credential, int64, error) {
	out := make([]*domain.Credential, 0, len(r.creds))
	for _, c := range r.creds {
		out = append(out, cloneCred(c))
	}
	return out, int64(len(out)), nil
}

func (r *stubCredRepo) SetPasswordHashIfEmpty(_ context.Context, id, hash string) (bool, error) {
	c, ok := r.creds[id]
	if !ok {
		return false, domain.ErrCredentialNotFound
	}
	if c.PasswordHash != "" {
		return false, nil
	}
	c.PasswordHash = hash
	return true, nil
}

type stubSessionRepo struct {
	sessions map[string]*domain.Session
	findErr  error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) error {
	clone := *s
	r.sessions[s.Token] = &clone
	return nil
}

func (r *stubSessionRepo) FindByToken(_ context.Context, token string) (*domain.Session, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) DeleteByToken(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func (r *stubSessionRepo) DeleteByUser(_ context.Context, userID string) error {
	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

type cacheEntry struct {
	identity *domain.Credential
	ttl      time.Duration
}

type stubIdentityCache struct {
	entries map[string]cacheEntry
}

func newStubIdentityCache() *stubIdentityCache {
	return &stubIdentityCache{entries: make(map[string]cacheEntry)}
}

func (c *stubIdentityCache) Get(_ context.Context, token string) (*domain.Credential, bool) {
	e, ok := c.entries[token]
	if !ok {
		return nil, false
	}
	return cloneCred(e.identity), true
}

func (c *stubIdentityCache) Set(_ context.Context, token string, identity *domain.Credential, ttl time.Duration) {
	c.entries[token] = cacheEntry{identity: cloneCred(identity), ttl: ttl}
}

func (c *stubIdentityCache) Drop(_ context.Context, token string) {
	delete(c.entries, token)
}

func newTestAuthService() (*AuthService, *stubCredRepo, *stubSessionRepo, *stubIdentityCache) {
	creds := newStubCredRepo()
	sessions := newStubSessionRepo()
	cache := newStubIdentityCache()
	svc := NewAuthService(creds, sessions, cache, "secret", 7*24*time.Hour, zerolog.Nop())
	return svc, creds, sessions, cache
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	cred, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "alice@co",
		Password: "pass123",
		Role:     domain.RoleEmployee,
		Profile:  domain.Profile{Name: "Alice"},
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if cred.PasswordHash != "" {
		t.Fatalf("sanitized credential must not carry the hash")
	}
	if cred.Role != domain.RoleEmployee {
		t.Fatalf("unexpected role: %s", cred.Role)
	}
}

func TestAuthService_Register_InviteStoresSentinel(t *testing.T) {
	svc, creds, _, _ := newTestAuthService()

	cred, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "bob@co",
		Role:  domain.RoleHR,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	stored := creds.creds[cred.ID]
	if stored.PasswordHash != "" {
		t.Fatalf("invite account must store the empty sentinel, got %q", stored.PasswordHash)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "", Role: domain.RoleHR}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty email, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "x@co", Role: "superuser"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad role, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "dup@co", Role: domain.RoleEmployee})
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "dup@co", Role: domain.RoleEmployee}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Authenticate_BootstrapFlow(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterInput{Email: "alice@co", Role: domain.RoleEmployee})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// first login sets the password permanently
	token, identity, err := svc.Authenticate(ctx, "alice@co", "pw1")
	if err != nil {
		t.Fatalf("bootstrap login failed: %v", err)
	}
	if token == "" || identity == nil {
		t.Fatalf("expected token and identity")
	}

	// a different password must not re-bootstrap
	if _, _, err := svc.Authenticate(ctx, "alice@co", "pw2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials after bootstrap, got %v", err)
	}

	// the bootstrapped password keeps working
	if _, _, err := svc.Authenticate(ctx, "alice@co", "pw1"); err != nil {
		t.Fatalf("login with bootstrapped password failed: %v", err)
	}
}

func TestAuthService_Authenticate_BootstrapRace(t *testing.T) {
	svc, creds, _, _ := newTestAuthService()
	ctx := context.Background()

	cred, _ := svc.Register(ctx, ports.RegisterInput{Email: "carol@co", Role: domain.RoleEmployee})

	// another request bootstrapped the password between read and write
	winner, _ := bcrypt.GenerateFromPassword([]byte("winner"), bcrypt.MinCost)
	creds.creds[cred.ID].PasswordHash = string(winner)

	if _, _, err := svc.Authenticate(ctx, "carol@co", "loser"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for losing bootstrap race, got %v", err)
	}
}

func TestAuthService_Authenticate_UnknownEmailCollapses(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, _, err := svc.Authenticate(context.Background(), "ghost@co", "pw")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email must collapse into ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, ports.RegisterInput{Email: "dave@co", Password: "goodpass", Role: domain.RoleEmployee})
	if _, _, err := svc.Authenticate(ctx, "dave@co", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_VerifyAndRevoke(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, ports.RegisterInput{Email: "erin@co", Password: "pw", Role: domain.RoleHR})
	token, _, err := svc.Authenticate(ctx, "erin@co", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	identity, err := svc.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.PasswordHash != "" {
		t.Fatalf("verify must return a sanitized identity")
	}
	if identity.Role != domain.RoleHR {
		t.Fatalf("unexpected role: %s", identity.Role)
	}

	if err := svc.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, err := svc.Verify(ctx, token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after revoke, got %v", err)
	}

	// revoking twice is not an error
	if err := svc.Revoke(ctx, token); err != nil {
		t.Fatalf("second revoke returned error: %v", err)
	}
}

func TestAuthService_Verify_StorageErrorIsNotRevocation(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, ports.RegisterInput{Email: "finn@co", Password: "pw", Role: domain.RoleEmployee})
	token, _, err := svc.Authenticate(ctx, "finn@co", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	storageErr := errors.New("connection reset")
	sessions.findErr = storageErr

	before := testutil.ToFloat64(metrics.TokenVerificationsTotal.WithLabelValues("session_expired"))
	if _, err := svc.Verify(ctx, token); !errors.Is(err, storageErr) {
		t.Fatalf("expected the storage error surfaced, got %v", err)
	}
	after := testutil.ToFloat64(metrics.TokenVerificationsTotal.WithLabelValues("session_expired"))
	if after != before {
		t.Fatalf("storage failure counted as session_expired: %v -> %v", before, after)
	}

	// the session is still live once the store recovers
	sessions.findErr = nil
	if _, err := svc.Verify(ctx, token); err != nil {
		t.Fatalf("verify after recovery failed: %v", err)
	}
}

func TestAuthService_Verify_BadToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Verify(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// a token signed with a different secret must fail the signature check
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "cred_1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(context.Background(), forged); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for forged token, got %v", err)
	}
}

func TestAuthService_Verify_LazySessionExpiry(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, ports.RegisterInput{Email: "frank@co", Password: "pw", Role: domain.RoleEmployee})
	token, _, err := svc.Authenticate(ctx, "frank@co", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// move the service clock past the session expiry; the token signature
	// still validates, the session record alone must reject the caller
	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	if _, err := svc.Verify(ctx, token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired for lapsed session, got %v", err)
	}
	if _, ok := sessions.sessions[token]; ok {
		t.Fatalf("lapsed session record should have been cleaned up")
	}
}

func TestAuthService_Verify_ServedFromCache(t *testing.T) {
	svc, creds, _, cache := newTestAuthService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, ports.RegisterInput{Email: "gina@co", Password: "pw", Role: domain.RoleAdmin})
	token, _, err := svc.Authenticate(ctx, "gina@co", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Verify(ctx, token); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	entry, ok := cache.entries[token]
	if !ok {
		t.Fatalf("expected identity to be cached after verify")
	}
	if entry.ttl <= 0 || entry.ttl > identityCacheTTL {
		t.Fatalf("cache ttl out of bounds: %v", entry.ttl)
	}

	finds := creds.finds
	if _, err := svc.Verify(ctx, token); err != nil {
		t.Fatalf("second verify failed: %v", err)
	}
	if creds.finds != finds {
		t.Fatalf("second verify should have been served from cache")
	}
}
