package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubLimiter struct {
	allow bool
	retry time.Duration
	err   error
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.retry, l.err
}

func serveLimited(t *testing.T, l Limiter) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/auth")

	called := false
	h := RateLimit(l, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestRateLimit_Allows(t *testing.T) {
	l := &stubLimiter{allow: true}
	rec, called := serveLimited(t, l)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d called=%v", rec.Code, called)
	}
	if len(l.keys) != 1 || l.keys[0] != "POST /api/auth|10.0.0.7" {
		t.Fatalf("unexpected keys: %v", l.keys)
	}
}

func TestRateLimit_Refuses(t *testing.T) {
	rec, called := serveLimited(t, &stubLimiter{allow: false, retry: 42 * time.Second})
	if called {
		t.Fatalf("next should not run")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderRetryAfter); got != "42" {
		t.Fatalf("Retry-After = %q", got)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rec, called := serveLimited(t, &stubLimiter{allow: false, err: errors.New("redis down")})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through on limiter error, got %d", rec.Code)
	}
}
