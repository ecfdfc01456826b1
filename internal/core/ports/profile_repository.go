package ports

import (
	"context"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// ProfileRepository stores whole profile documents, one per owner.
type ProfileRepository interface {
	// FindByOwner returns domain.ErrProfileNotFound when the user has no profile.
	FindByOwner(ctx context.Context, ownerID string) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	Insert(ctx context.Context, p *domain.Profile) error
	// Replace writes p back if the stored version still equals p.Version and
	// bumps the version. A stale write fails with domain.ErrConcurrentUpdate.
	Replace(ctx context.Context, p *domain.Profile) error
	// DeleteByOwner is a no-op when the user has no profile.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
