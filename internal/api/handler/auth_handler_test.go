package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/staffhub/hr-portal/internal/api"
	"github.com/staffhub/hr-portal/internal/api/handler"
	"github.com/staffhub/hr-portal/internal/api/middleware"
	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

type stubAuthService struct {
	token    string
	user     *domain.Credential
	authErr  error
	regErr   error
	revoked  []string
	lastAuth struct {
		email, password string
	}
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) (*domain.Credential, error) {
	if s.regErr != nil {
		return nil, s.regErr
	}
	return &domain.Credential{ID: "new-id", Email: in.Email, Role: in.Role, Profile: in.Profile}, nil
}

func (s *stubAuthService) Authenticate(_ context.Context, email, password string) (string, *domain.Credential, error) {
	s.lastAuth.email = email
	s.lastAuth.password = password
	if s.authErr != nil {
		return "", nil, s.authErr
	}
	return s.token, s.user, nil
}

func (s *stubAuthService) Verify(_ context.Context, _ string) (*domain.Credential, error) {
	return s.user, nil
}

func (s *stubAuthService) Revoke(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{
		token: "tok-123",
		user:  &domain.Credential{ID: "u1", Email: "ana@corp.test", Role: domain.RoleEmployee},
	}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/auth/login", h.Login)

	body := `{"email":"ana@corp.test","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok-123"`) {
		t.Errorf("body missing token: %s", rec.Body.String())
	}
	var gotCookie bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie && ck.Value == "tok-123" && ck.HttpOnly {
			gotCookie = true
		}
	}
	if !gotCookie {
		t.Error("expected HTTP-only token cookie on login response")
	}
	if svc.lastAuth.email != "ana@corp.test" {
		t.Errorf("authenticated email = %q", svc.lastAuth.email)
	}
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{authErr: domain.ErrInvalidCredentials}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/auth/login", h.Login)

	body := `{"email":"ana@corp.test","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	svc := &stubAuthService{}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/auth/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.lastAuth.email != "" {
		t.Error("service should not be called on a validation failure")
	}
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/v1/employees", h.Register)

	body := `{"email":"bo@corp.test","role":"employee","name":"Bo","department":"ops"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"bo@corp.test"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	svc := &stubAuthService{regErr: domain.ErrDuplicateEmail}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/v1/employees", h.Register)

	body := `{"email":"bo@corp.test","role":"employee","name":"Bo"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestAuthHandler_RegisterBadRole(t *testing.T) {
	svc := &stubAuthService{}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/v1/employees", h.Register)

	body := `{"email":"bo@corp.test","role":"superuser","name":"Bo"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &stubAuthService{}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.POST("/auth/logout", h.Logout, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("token", "tok-123")
			return next(c)
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(svc.revoked) != 1 || svc.revoked[0] != "tok-123" {
		t.Errorf("revoked = %v, want [tok-123]", svc.revoked)
	}
	var cleared bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected token cookie to be cleared on logout")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	svc := &stubAuthService{}
	h := handler.NewAuthHandler(svc, 0)

	e := newTestEcho()
	e.GET("/auth/me", h.Me, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("identity", &domain.Credential{ID: "u1", Email: "ana@corp.test", Role: domain.RoleHR})
			return next(c)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"role":"hr"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
