package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// errorResponse is the envelope for every non-validation failure.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse lists every rejected field at once.
type validationResponse struct {
	Errors domain.ValidationErrors `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes by their Kind.
//   - Renders validation failures as {"errors":[{"field","message"}]}.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve domain.ValidationErrors
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, validationResponse{Errors: ve})
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, gate rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if code, ok := statusFor(domain.KindOf(err)); ok {
		var de *domain.Error
		errors.As(err, &de)
		return code, de.Msg
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func statusFor(k domain.Kind) (int, bool) {
	switch k {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized, true
	case domain.KindForbidden:
		return http.StatusForbidden, true
	case domain.KindNotFound:
		return http.StatusNotFound, true
	case domain.KindConflict:
		return http.StatusConflict, true
	case domain.KindInvalidIdentifier:
		return http.StatusBadRequest, true
	default:
		return 0, false
	}
}
