package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/ports"
	"github.com/devconnector/devconnector-api/internal/pkg/metrics"
)

// AccountService deletes a user's posts, then their profile, then the
// identity itself. The steps are not transactional: a failure stops the
// cascade and leaves earlier deletions in place, but never removes the
// identity while content still refers to it.
type AccountService struct {
	users    ports.UserRepository
	profiles ports.ProfileRepository
	posts    ports.PostRepository
	lock     ports.Serializer
	log      zerolog.Logger
}

func NewAccountService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	posts ports.PostRepository,
	lock ports.Serializer,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{users: users, profiles: profiles, posts: posts, lock: lock, log: log}
}

// Delete holds the user's key for the whole cascade, so a post or profile
// created concurrently either lands before the cascade and is removed, or
// after it and finds no identity. Steps call the repositories directly: a
// nested Do on the same key would deadlock.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	return s.lock.Do(ctx, userKey(userID), func(ctx context.Context) error {
		return s.cascade(ctx, userID)
	})
}

func (s *AccountService) cascade(ctx context.Context, userID string) error {
	log := s.log.With().Str("user_id", userID).Logger()

	removed, err := s.posts.DeleteByAuthor(ctx, userID)
	if err != nil {
		metrics.CascadeFailuresTotal.WithLabelValues("posts").Inc()
		log.Error().Err(err).Msg("account cascade failed at posts")
		return fmt.Errorf("delete account: posts: %w", err)
	}

	if err := s.profiles.DeleteByOwner(ctx, userID); err != nil {
		metrics.CascadeFailuresTotal.WithLabelValues("profile").Inc()
		log.Error().Err(err).Int64("posts_removed", removed).Msg("account cascade failed at profile")
		return fmt.Errorf("delete account: profile: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		metrics.CascadeFailuresTotal.WithLabelValues("user").Inc()
		log.Error().Err(err).Int64("posts_removed", removed).Msg("account cascade failed at user; profile already removed")
		return fmt.Errorf("delete account: user: %w", err)
	}

	log.Info().Int64("posts_removed", removed).Msg("account deleted")
	return nil
}
