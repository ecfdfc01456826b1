package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/pkg/clock"
)

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: make(map[string]time.Duration)}
}

func (d *memDenylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = ttl
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

func TestTokenService_IssueVerify(t *testing.T) {
	fc := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewTokenService(testSecret, time.Hour, zerolog.Nop(), WithClock(fc.Now))

	token, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	cred, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if cred.UserID != "u1" {
		t.Fatalf("unexpected user id %q", cred.UserID)
	}
	if cred.TokenID == "" {
		t.Fatalf("expected a token id")
	}
	if want := fc.Now().Add(time.Hour); !cred.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", cred.ExpiresAt, want)
	}
}

func TestTokenService_Expired(t *testing.T) {
	fc := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewTokenService(testSecret, time.Hour, zerolog.Nop(), WithClock(fc.Now))

	token, _ := svc.Issue("u1")
	fc.Advance(time.Hour + time.Second)

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, zerolog.Nop())
	other := NewTokenService("other-secret", time.Hour, zerolog.Nop())

	good, _ := svc.Issue("u1")
	forged, _ := other.Issue("u1")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		User: tokenUser{ID: "u1"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{User: tokenUser{ID: "u1"}})
	noExpToken, _ := noExp.SignedString([]byte(testSecret))

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noUserToken, _ := noUser.SignedString([]byte(testSecret))

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not.a.token",
		"tampered":      good[:len(good)-2] + "xx",
		"wrong secret":  forged,
		"alg none":      unsigned,
		"no expiry":     noExpToken,
		"no user claim": noUserToken,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestTokenService_RevokeWithDenylist(t *testing.T) {
	fc := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	deny := newMemDenylist()
	svc := NewTokenService(testSecret, time.Hour, zerolog.Nop(), WithClock(fc.Now), WithDenylist(deny))

	token, _ := svc.Issue("u1")
	cred, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	fc.Advance(15 * time.Minute)
	if err := svc.Revoke(context.Background(), cred); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if ttl := deny.revoked[cred.TokenID]; ttl != 45*time.Minute {
		t.Fatalf("denylist ttl = %v, want 45m", ttl)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("revoked token still accepted: %v", err)
	}

	other, _ := svc.Issue("u1")
	if _, err := svc.Verify(context.Background(), other); err != nil {
		t.Fatalf("unrelated token rejected: %v", err)
	}
}

func TestTokenService_DenylistErrorFailsClosed(t *testing.T) {
	deny := newMemDenylist()
	deny.err = errors.New("redis down")
	svc := NewTokenService(testSecret, time.Hour, zerolog.Nop(), WithDenylist(deny))

	token, _ := svc.Issue("u1")
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenService_RevokeWithoutDenylistIsNoop(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, zerolog.Nop())

	token, _ := svc.Issue("u1")
	cred, _ := svc.Verify(context.Background(), token)
	if err := svc.Revoke(context.Background(), cred); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); err != nil {
		t.Fatalf("stateless token should survive logout: %v", err)
	}
}
