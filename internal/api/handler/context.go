package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// ctxIdentity extracts the sanitized identity injected by the Auth middleware
// and performs a fast-fail check before any service call: presence proves the
// middleware ran for this route.
func ctxIdentity(c echo.Context) (*domain.Credential, error) {
	identity, _ := c.Get("identity").(*domain.Credential)
	if identity == nil || identity.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}
