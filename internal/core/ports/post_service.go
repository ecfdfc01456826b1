package ports

import (
	"context"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

type PostService interface {
	Create(ctx context.Context, authorID, text string) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Delete(ctx context.Context, id, requesterID string) error
	Like(ctx context.Context, postID, userID string) ([]domain.Like, error)
	Unlike(ctx context.Context, postID, userID string) ([]domain.Like, error)
	AddComment(ctx context.Context, postID, authorID, text string) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, requesterID string) ([]domain.Comment, error)
}
