package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/devconnector-api/internal/api/middleware"
	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

// stubPostService records the ids it was called with; unimplemented methods panic.
type stubPostService struct {
	ports.PostService

	postID, commentID, userID string
	err                       error
}

func (s *stubPostService) Delete(_ context.Context, id, requesterID string) error {
	s.postID, s.userID = id, requesterID
	return s.err
}

func (s *stubPostService) Like(_ context.Context, postID, userID string) ([]domain.Like, error) {
	s.postID, s.userID = postID, userID
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Like{{User: userID}}, nil
}

func (s *stubPostService) DeleteComment(_ context.Context, postID, commentID, requesterID string) ([]domain.Comment, error) {
	s.postID, s.commentID, s.userID = postID, commentID, requesterID
	return nil, s.err
}

// callPath runs h as userID with the given path parameters.
func callPath(h echo.HandlerFunc, method, userID string, params map[string]string) (*httptest.ResponseRecorder, error) {
	e := newTestEcho()
	req := httptest.NewRequest(method, "/", nil)
	req.Header.Set(middleware.TokenHeader, userID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return rec, middleware.Auth(tokenIsUser{})(h)(c)
}

func TestPostHandler_Delete_NotAuthor(t *testing.T) {
	svc := &stubPostService{err: domain.ErrForbidden}
	h := NewPostHandler(svc)

	_, err := callPath(h.Delete, http.MethodDelete, "bob", map[string]string{"id": "p1"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden kind, got %v", domain.KindOf(err))
	}
	if svc.postID != "p1" || svc.userID != "bob" {
		t.Fatalf("service called with post %q user %q", svc.postID, svc.userID)
	}
}

func TestPostHandler_Delete_Success(t *testing.T) {
	h := NewPostHandler(&stubPostService{})

	rec, err := callPath(h.Delete, http.MethodDelete, "alice", map[string]string{"id": "p1"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || body.Msg != "post removed" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestPostHandler_Like_AlreadyLiked(t *testing.T) {
	h := NewPostHandler(&stubPostService{err: domain.ErrAlreadyLiked})

	_, err := callPath(h.Like, http.MethodPut, "bob", map[string]string{"id": "p1"})
	if !errors.Is(err, domain.ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict kind, got %v", domain.KindOf(err))
	}
}

func TestPostHandler_Like_ReturnsLikes(t *testing.T) {
	h := NewPostHandler(&stubPostService{})

	rec, err := callPath(h.Like, http.MethodPut, "bob", map[string]string{"id": "p1"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var likes []domain.Like
	if err := json.Unmarshal(rec.Body.Bytes(), &likes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(likes) != 1 || likes[0].User != "bob" {
		t.Fatalf("unexpected likes %+v", likes)
	}
}

func TestPostHandler_DeleteComment_PassesBothIDs(t *testing.T) {
	svc := &stubPostService{err: domain.ErrForbidden}
	h := NewPostHandler(svc)

	_, err := callPath(h.DeleteComment, http.MethodDelete, "bob",
		map[string]string{"id": "p1", "comment_id": "c1"})
	if domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden kind, got %v", err)
	}
	if svc.postID != "p1" || svc.commentID != "c1" || svc.userID != "bob" {
		t.Fatalf("service called with %+v", svc)
	}
}
