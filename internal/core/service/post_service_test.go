package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/infrastructure/queue"
)

const (
	aliceID = "64b0000000000000000000a1"
	bobID   = "64b0000000000000000000b2"
)

func newTestUsers() *stubUserRepo {
	return newStubUserRepo(
		&domain.User{ID: aliceID, Name: "Alice", Avatar: "avatar:alice"},
		&domain.User{ID: bobID, Name: "Bob", Avatar: "avatar:bob"},
	)
}

func newTestPostService() (*PostService, *stubPostRepo) {
	posts := newStubPostRepo()
	return NewPostService(posts, newTestUsers(), &inlineLock{}, zerolog.Nop()), posts
}

func TestPostService_Create(t *testing.T) {
	svc, repo := newTestPostService()

	p, err := svc.Create(context.Background(), aliceID, "hello")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.Name != "Alice" || p.Avatar != "avatar:alice" || p.User != aliceID {
		t.Fatalf("author identity not copied: %+v", p)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("post not stored")
	}

	_, err = svc.Create(context.Background(), aliceID, "   ")
	var ve domain.ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors for blank text, got %v", err)
	}
}

func TestPostService_LikeTwiceConflicts(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, aliceID, "hello")

	likes, err := svc.Like(ctx, p.ID, bobID)
	if err != nil {
		t.Fatalf("Like returned error: %v", err)
	}
	if len(likes) != 1 || likes[0].User != bobID {
		t.Fatalf("unexpected likes %+v", likes)
	}
	if _, err := svc.Like(ctx, p.ID, bobID); !errors.Is(err, domain.ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}

	stored, _ := svc.Get(ctx, p.ID)
	if len(stored.Likes) != 1 {
		t.Fatalf("second like changed the post: %+v", stored.Likes)
	}
}

func TestPostService_Unlike(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, aliceID, "hello")

	if _, err := svc.Unlike(ctx, p.ID, bobID); !errors.Is(err, domain.ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
	if _, err := svc.Like(ctx, p.ID, aliceID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}
	if _, err := svc.Like(ctx, p.ID, bobID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}

	likes, err := svc.Unlike(ctx, p.ID, bobID)
	if err != nil {
		t.Fatalf("Unlike returned error: %v", err)
	}
	if len(likes) != 1 || likes[0].User != aliceID {
		t.Fatalf("other user's like was touched: %+v", likes)
	}
}

func TestPostService_DeleteOnlyByAuthor(t *testing.T) {
	svc, repo := newTestPostService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, aliceID, "hello")

	if err := svc.Delete(ctx, p.ID, bobID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("post removed by non-author")
	}
	if err := svc.Delete(ctx, p.ID, aliceID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostService_MalformedID(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()

	if _, err := svc.Get(ctx, "xyz"); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("Get: expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := svc.Like(ctx, "xyz", bobID); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("Like: expected ErrInvalidIdentifier, got %v", err)
	}
	if err := svc.Delete(ctx, "xyz", bobID); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("Delete: expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := svc.DeleteComment(ctx, domain.NewID(), "xyz", bobID); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("DeleteComment: expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := svc.Get(ctx, domain.NewID()); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("Get: expected ErrPostNotFound, got %v", err)
	}
}

func TestPostService_Comments(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, aliceID, "hello")

	if _, err := svc.AddComment(ctx, p.ID, bobID, ""); err == nil {
		t.Fatalf("expected validation error for empty comment")
	}
	if _, err := svc.AddComment(ctx, p.ID, aliceID, "first"); err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	comments, err := svc.AddComment(ctx, p.ID, bobID, "second")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "second" || comments[0].Name != "Bob" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	bobComment := comments[0].ID
	if _, err := svc.DeleteComment(ctx, p.ID, bobComment, aliceID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.DeleteComment(ctx, p.ID, domain.NewID(), bobID); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	comments, err = svc.DeleteComment(ctx, p.ID, bobComment, bobID)
	if err != nil {
		t.Fatalf("DeleteComment returned error: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "first" {
		t.Fatalf("unexpected comments after delete %+v", comments)
	}
}

func TestPostService_ConcurrentLikesAreNotLost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ser := queue.NewSerializer(4, zerolog.Nop())
	ser.Start(ctx)

	const n = 20
	users := newStubUserRepo(&domain.User{ID: aliceID, Name: "Alice"})
	posts := newStubPostRepo()
	svc := NewPostService(posts, users, ser, zerolog.Nop())

	p, err := svc.Create(ctx, aliceID, "popular")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Like(ctx, p.ID, domain.NewID())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Like returned error: %v", err)
		}
	}

	stored, _ := svc.Get(ctx, p.ID)
	if len(stored.Likes) != n {
		t.Fatalf("expected %d likes, got %d", n, len(stored.Likes))
	}
}
