package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

type stubVerifier struct {
	identity *domain.Credential
	err      error
	gotToken string
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*domain.Credential, error) {
	v.gotToken = token
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func TestAuthMiddleware_BearerCarrier(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{identity: &domain.Credential{ID: "cred_1", Email: "alice@co", Role: domain.RoleAdmin}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "cred_1" {
			t.Fatalf("user_id not set")
		}
		if c.Get("role") != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		if c.Get("token") != "token123" {
			t.Fatalf("token not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if verifier.gotToken != "token123" {
		t.Fatalf("verifier got %q", verifier.gotToken)
	}
}

func TestAuthMiddleware_CookieCarrier(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{identity: &domain.Credential{ID: "cred_2", Role: domain.RoleEmployee}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if verifier.gotToken != "cookie-token" {
		t.Fatalf("verifier got %q", verifier.gotToken)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(verifier)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(verifier)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_VerifyFails(t *testing.T) {
	e := echo.New()
	verifier := &stubVerifier{err: domain.ErrSessionExpired}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(verifier)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
