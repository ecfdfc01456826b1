package ports

import (
	"context"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// UserRepository persists identities. Email is unique; Create reports a
// duplicate as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Delete removes the identity; a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
