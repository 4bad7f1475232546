package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// TokenCookie is the name of the HTTP-only cookie carrying the bearer token.
const TokenCookie = "hr_token"

// TokenVerifier resolves a bearer token to a sanitized identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Credential, error)
}

// Auth extracts the token from the Authorization header or the session
// cookie, verifies it against both the signature and the live session
// record, and injects the caller's identity into the request context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			identity, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			c.Set("identity", identity)
			c.Set("user_id", identity.ID)
			c.Set("role", identity.Role)
			c.Set("token", token)

			return next(c)
		}
	}
}

// extractToken accepts either carrier: "Authorization: Bearer <token>" or the
// HTTP-only session cookie.
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
