package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/devconnector-api/internal/api/middleware"
)

// ctxUserID returns the identity the Auth middleware resolved for this
// request. A route registered without the middleware fails with 401 rather
// than acting anonymously.
func ctxUserID(c echo.Context) (string, error) {
	cred, ok := middleware.Credential(c)
	if !ok || cred.UserID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "no token, authorization denied")
	}
	return cred.UserID, nil
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	return c.Validate(req)
}
