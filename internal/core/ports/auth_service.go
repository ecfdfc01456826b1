package ports

import (
	"context"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	// Register creates the identity and returns a token for it.
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	Logout(ctx context.Context, cred *Credential) error
}
