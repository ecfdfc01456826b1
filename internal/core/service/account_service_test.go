package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/infrastructure/queue"
)

type accountFixture struct {
	users    *stubUserRepo
	profiles *stubProfileRepo
	posts    *stubPostRepo
	svc      *AccountService
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	f := &accountFixture{
		users:    newTestUsers(),
		profiles: newStubProfileRepo(),
		posts:    newStubPostRepo(),
	}
	f.svc = NewAccountService(f.users, f.profiles, f.posts, &inlineLock{}, zerolog.Nop())

	ctx := context.Background()
	for _, id := range []string{aliceID, bobID} {
		u, _ := f.users.FindByID(ctx, id)
		if err := f.profiles.Insert(ctx, domain.NewProfile(u, day(2024, 1, 1))); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
		p, err := domain.NewPost(u, "by "+u.Name, day(2024, 1, 2))
		if err != nil {
			t.Fatalf("seed post: %v", err)
		}
		_ = f.posts.Insert(ctx, p)
	}
	return f
}

func (f *accountFixture) postsBy(userID string) int {
	n := 0
	for _, p := range f.posts.byID {
		if p.User == userID {
			n++
		}
	}
	return n
}

func TestAccountService_DeleteCascades(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	if err := f.svc.Delete(ctx, aliceID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if f.postsBy(aliceID) != 0 {
		t.Fatalf("alice's posts survived")
	}
	if _, err := f.profiles.FindByOwner(ctx, aliceID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("alice's profile survived: %v", err)
	}
	if _, err := f.users.FindByID(ctx, aliceID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("alice's identity survived: %v", err)
	}

	if f.postsBy(bobID) != 1 {
		t.Fatalf("bob's posts were touched")
	}
	if _, err := f.profiles.FindByOwner(ctx, bobID); err != nil {
		t.Fatalf("bob's profile was touched: %v", err)
	}
}

func TestAccountService_DeleteWithoutProfile(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	_ = f.profiles.DeleteByOwner(ctx, aliceID)

	if err := f.svc.Delete(ctx, aliceID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.users.FindByID(ctx, aliceID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("identity survived: %v", err)
	}
}

func TestAccountService_PostFailureStopsCascade(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	boom := errors.New("posts unavailable")
	f.posts.deleteErr = boom

	if err := f.svc.Delete(ctx, aliceID); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped posts error, got %v", err)
	}
	if _, err := f.profiles.FindByOwner(ctx, aliceID); err != nil {
		t.Fatalf("profile removed after earlier step failed: %v", err)
	}
	if _, err := f.users.FindByID(ctx, aliceID); err != nil {
		t.Fatalf("identity removed after earlier step failed: %v", err)
	}
}

func TestAccountService_ProfileFailureKeepsIdentity(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	boom := errors.New("profiles unavailable")
	f.profiles.deleteErr = boom

	if err := f.svc.Delete(ctx, aliceID); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped profile error, got %v", err)
	}
	if f.postsBy(aliceID) != 0 {
		t.Fatalf("posts step should already have run")
	}
	if _, err := f.users.FindByID(ctx, aliceID); err != nil {
		t.Fatalf("identity removed while profile remains: %v", err)
	}
}

// afterDeletePosts runs hook once the author's posts are gone.
type afterDeletePosts struct {
	*stubPostRepo
	hook func()
}

func (r *afterDeletePosts) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	n, err := r.stubPostRepo.DeleteByAuthor(ctx, authorID)
	r.hook()
	return n, err
}

// afterDeleteProfile runs hook once the owner's profile is gone.
type afterDeleteProfile struct {
	*stubProfileRepo
	hook func()
}

func (r *afterDeleteProfile) DeleteByOwner(ctx context.Context, ownerID string) error {
	err := r.stubProfileRepo.DeleteByOwner(ctx, ownerID)
	r.hook()
	return err
}

// startLock returns a running serializer stopped at test cleanup.
func startLock(t *testing.T) *queue.Serializer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := queue.NewSerializer(4, zerolog.Nop())
	s.Start(ctx)
	return s
}

func TestAccountService_PostCreatedDuringCascadeIsNotOrphaned(t *testing.T) {
	f := newAccountFixture(t)
	lock := startLock(t)
	ctx := context.Background()
	posts := NewPostService(f.posts, f.users, lock, zerolog.Nop())

	createErr := make(chan error, 1)
	hooked := &afterDeletePosts{stubPostRepo: f.posts, hook: func() {
		go func() {
			_, err := posts.Create(ctx, aliceID, "written while leaving")
			createErr <- err
		}()
		// Give the create time to run if nothing holds it back.
		time.Sleep(20 * time.Millisecond)
	}}
	svc := NewAccountService(f.users, f.profiles, hooked, lock, zerolog.Nop())

	if err := svc.Delete(ctx, aliceID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := <-createErr; !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected create to find no author, got %v", err)
	}
	if n := f.postsBy(aliceID); n != 0 {
		t.Fatalf("%d post(s) survived the cascade", n)
	}
}

func TestAccountService_ProfileCreatedDuringCascadeIsNotOrphaned(t *testing.T) {
	f := newAccountFixture(t)
	lock := startLock(t)
	ctx := context.Background()
	profiles := NewProfileService(f.profiles, f.users, stubRepoLister{}, lock, zerolog.Nop())

	upsertErr := make(chan error, 1)
	hooked := &afterDeleteProfile{stubProfileRepo: f.profiles, hook: func() {
		go func() {
			_, err := profiles.Upsert(ctx, aliceID, domain.ProfileFields{Status: "Dev", Skills: "go"})
			upsertErr <- err
		}()
		time.Sleep(20 * time.Millisecond)
	}}
	svc := NewAccountService(f.users, hooked, f.posts, lock, zerolog.Nop())

	if err := svc.Delete(ctx, aliceID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := <-upsertErr; !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected upsert to find no owner, got %v", err)
	}
	if _, err := f.profiles.FindByOwner(ctx, aliceID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("profile survived the cascade: %v", err)
	}
}
