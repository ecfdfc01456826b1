// Package client is a Go client for the DevConnector API.
//
// Authenticated calls take the bearer token as an explicit argument; the
// client itself holds no credentials, so one Client can serve many users.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devconnector/devconnector-api/pkg/notify"
)

const defaultTimeout = 10 * time.Second

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Message)
		}
		return fmt.Sprintf("api: %d: %s", e.Status, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithNotifications reports outcomes of mutating calls to q: a success
// message per completed action and one danger message per failure.
func WithNotifications(q *notify.Queue) Option {
	return func(c *Client) { c.notes = q }
}

type Client struct {
	baseURL string
	http    *http.Client
	notes   *notify.Queue
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors"`
}

// do sends one request. token may be empty for public routes; out may be nil.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		apiErr := &APIError{Status: resp.StatusCode, Message: eb.Error, Fields: eb.Errors}
		if apiErr.Message == "" && len(apiErr.Fields) == 0 {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.reportFailure(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) reportFailure(e *APIError) {
	if c.notes == nil {
		return
	}
	if len(e.Fields) == 0 {
		c.notes.Push(e.Message, notify.KindDanger)
		return
	}
	for _, f := range e.Fields {
		c.notes.Push(f.Message, notify.KindDanger)
	}
}

func (c *Client) reportSuccess(msg string) {
	if c.notes != nil {
		c.notes.Push(msg, notify.KindSuccess)
	}
}

type tokenBody struct {
	Token string `json:"token"`
}

type msgBody struct {
	Msg string `json:"msg"`
}

// --- Identity ---

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var out tokenBody
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/users", "", in, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenBody
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth", "", in, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/auth", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes token on servers that keep a denylist.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// --- Profiles ---

func (c *Client) CurrentProfile(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertProfile creates the caller's profile or updates the supplied fields.
func (c *Client) UpsertProfile(ctx context.Context, token string, in ProfileInput) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodPost, "/api/profile", token, in, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Profile Saved")
	return &out, nil
}

func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProfileByUser(ctx context.Context, userID string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile/user/"+url.PathEscape(userID), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes the caller's posts, profile and identity.
func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	var out msgBody
	if err := c.do(ctx, http.MethodDelete, "/api/profile", token, nil, &out); err != nil {
		return err
	}
	c.reportSuccess("Your account has been permanently deleted")
	return nil
}

func (c *Client) AddExperience(ctx context.Context, token string, in ExperienceInput) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodPut, "/api/profile/experience", token, in, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Experience Added")
	return &out, nil
}

func (c *Client) DeleteExperience(ctx context.Context, token, id string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodDelete, "/api/profile/experience/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Experience Removed")
	return &out, nil
}

func (c *Client) AddEducation(ctx context.Context, token string, in EducationInput) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodPut, "/api/profile/education", token, in, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Education Added")
	return &out, nil
}

func (c *Client) DeleteEducation(ctx context.Context, token, id string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodDelete, "/api/profile/education/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Education Removed")
	return &out, nil
}

func (c *Client) GitHubRepos(ctx context.Context, username string) ([]Repository, error) {
	var out []Repository
	if err := c.do(ctx, http.MethodGet, "/api/profile/github/"+url.PathEscape(username), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Posts ---

func (c *Client) CreatePost(ctx context.Context, token, text string) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", token, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Post Created")
	return &out, nil
}

func (c *Client) Posts(ctx context.Context, token string) ([]Post, error) {
	var out []Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Post(ctx context.Context, token, id string) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), token, nil, nil); err != nil {
		return err
	}
	c.reportSuccess("Post Removed")
	return nil
}

// Like returns the post's likes after the change.
func (c *Client) Like(ctx context.Context, token, postID string) ([]Like, error) {
	var out []Like
	if err := c.do(ctx, http.MethodPut, "/api/posts/like/"+url.PathEscape(postID), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Unlike(ctx context.Context, token, postID string) ([]Like, error) {
	var out []Like
	if err := c.do(ctx, http.MethodPut, "/api/posts/unlike/"+url.PathEscape(postID), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddComment returns the post's comments after the change, newest first.
func (c *Client) AddComment(ctx context.Context, token, postID, text string) ([]Comment, error) {
	var out []Comment
	path := "/api/posts/comment/" + url.PathEscape(postID)
	if err := c.do(ctx, http.MethodPost, path, token, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Comment Added")
	return out, nil
}

func (c *Client) DeleteComment(ctx context.Context, token, postID, commentID string) ([]Comment, error) {
	var out []Comment
	path := "/api/posts/comment/" + url.PathEscape(postID) + "/" + url.PathEscape(commentID)
	if err := c.do(ctx, http.MethodDelete, path, token, nil, &out); err != nil {
		return nil, err
	}
	c.reportSuccess("Comment Removed")
	return out, nil
}
