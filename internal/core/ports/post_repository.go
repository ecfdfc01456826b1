package ports

import (
	"context"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// PostRepository stores whole post documents including likes and comments.
type PostRepository interface {
	Insert(ctx context.Context, p *domain.Post) error
	// FindByID returns domain.ErrPostNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*domain.Post, error)
	// Replace writes p back if the stored version still equals p.Version and
	// bumps the version. A stale write fails with domain.ErrConcurrentUpdate;
	// a vanished post with domain.ErrPostNotFound.
	Replace(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, id string) error
	// DeleteByAuthor removes every post written by authorID and reports how many.
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}
