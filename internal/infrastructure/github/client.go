// Package github lists a user's public repositories through the GitHub REST
// API, optionally caching responses.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

const (
	DefaultBaseURL = "https://api.github.com"
	defaultTimeout = 5 * time.Second
	perPage        = 5
)

// Cache is the optional response cache (see redis.JSONCache).
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	cache   Cache
	log     zerolog.Logger
}

// NewClient builds a client. cache may be nil.
func NewClient(baseURL, token string, cache Cache, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		cache:   cache,
		log:     log,
	}
}

// ListRepositories returns the five oldest-created public repositories of
// username. Any failure, including an unknown user, is reported as
// domain.ErrGitHubNotFound; the cause is logged.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]ports.Repository, error) {
	key := strings.ToLower(username)
	if c.cache != nil {
		var cached []ports.Repository
		if hit, err := c.cache.Get(ctx, key, &cached); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("github cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	repos, err := c.fetch(ctx, username)
	if err != nil {
		c.log.Warn().Err(err).Str("username", username).Msg("github repository listing failed")
		return nil, domain.ErrGitHubNotFound
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, repos); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("github cache write failed")
		}
	}
	return repos, nil
}

func (c *Client) fetch(ctx context.Context, username string) ([]ports.Repository, error) {
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "devconnector-api")
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github responded %d", resp.StatusCode)
	}

	repos := make([]ports.Repository, 0, perPage)
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repositories: %w", err)
	}
	return repos, nil
}
