package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/devconnector-api/internal/core/ports"
	"github.com/devconnector/devconnector-api/internal/pkg/metrics"
)

// TokenHeader is the header clients send their bearer token in.
const TokenHeader = "x-auth-token"

const credentialKey = "credential"

// Auth verifies the request token and injects the resolved credential into
// the context. Nothing is cached between requests.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c.Request())
			if raw == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "no token, authorization denied")
			}

			cred, err := tokens.Verify(c.Request().Context(), raw)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "token is not valid").SetInternal(err)
			}

			c.Set(credentialKey, cred)
			return next(c)
		}
	}
}

// Credential returns the credential stored by Auth, if any.
func Credential(c echo.Context) (*ports.Credential, bool) {
	cred, ok := c.Get(credentialKey).(*ports.Credential)
	return cred, ok && cred != nil
}

// tokenFromRequest prefers x-auth-token and falls back to a bearer
// Authorization header.
func tokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
