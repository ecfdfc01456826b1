package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
	"github.com/devconnector/devconnector-api/internal/pkg/metrics"
)

// PostService is the post aggregate engine. Likes and comments are changed
// by loading the post, mutating it in memory and replacing it, one writer
// per post at a time.
type PostService struct {
	posts ports.PostRepository
	users ports.UserRepository
	lock  ports.Serializer
	log   zerolog.Logger
	now   func() time.Time
}

func NewPostService(posts ports.PostRepository, users ports.UserRepository, lock ports.Serializer, log zerolog.Logger) *PostService {
	return &PostService{posts: posts, users: users, lock: lock, log: log, now: time.Now}
}

func postKey(postID string) string { return "post:" + postID }

// Create runs under the author's key so it cannot interleave with the
// deletion of that author's account.
func (s *PostService) Create(ctx context.Context, authorID, text string) (*domain.Post, error) {
	if isBlankText(text) {
		return nil, domain.Required("text")
	}
	var out *domain.Post
	err := s.lock.Do(ctx, userKey(authorID), func(ctx context.Context) error {
		author, err := s.users.FindByID(ctx, authorID)
		if err != nil {
			return err
		}
		p, err := domain.NewPost(author, text, s.now().UTC())
		if err != nil {
			return err
		}
		if err := s.posts.Insert(ctx, p); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AggregateMutationsTotal.WithLabelValues("post", "create").Inc()
	s.log.Info().Str("post_id", out.ID).Str("user_id", authorID).Msg("post created")
	return out, nil
}

func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, id, requesterID string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return s.lock.Do(ctx, postKey(id), func(ctx context.Context) error {
		p, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.CanDelete(requesterID); err != nil {
			return err
		}
		if err := s.posts.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		metrics.AggregateMutationsTotal.WithLabelValues("post", "delete").Inc()
		s.log.Info().Str("post_id", id).Str("user_id", requesterID).Msg("post removed")
		return nil
	})
}

func (s *PostService) Like(ctx context.Context, postID, userID string) ([]domain.Like, error) {
	p, err := s.mutate(ctx, postID, "like", func(p *domain.Post) error {
		return p.Like(userID)
	})
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (s *PostService) Unlike(ctx context.Context, postID, userID string) ([]domain.Like, error) {
	p, err := s.mutate(ctx, postID, "unlike", func(p *domain.Post) error {
		return p.Unlike(userID)
	})
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (s *PostService) AddComment(ctx context.Context, postID, authorID, text string) ([]domain.Comment, error) {
	if isBlankText(text) {
		return nil, domain.Required("text")
	}
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	p, err := s.mutate(ctx, postID, "comment", func(p *domain.Post) error {
		_, err := p.AddComment(author, text, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, requesterID string) ([]domain.Comment, error) {
	if err := domain.ValidateID(commentID); err != nil {
		return nil, err
	}
	p, err := s.mutate(ctx, postID, "delete_comment", func(p *domain.Post) error {
		return p.RemoveComment(commentID, requesterID)
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

func (s *PostService) mutate(ctx context.Context, postID, op string, change func(*domain.Post) error) (*domain.Post, error) {
	if err := domain.ValidateID(postID); err != nil {
		return nil, err
	}
	var out *domain.Post
	err := s.lock.Do(ctx, postKey(postID), func(ctx context.Context) error {
		p, err := s.posts.FindByID(ctx, postID)
		if err != nil {
			return err
		}
		if err := change(p); err != nil {
			return err
		}
		if err := s.posts.Replace(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		metrics.AggregateMutationsTotal.WithLabelValues("post", op).Inc()
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isBlankText(s string) bool {
	return strings.TrimSpace(s) == ""
}
