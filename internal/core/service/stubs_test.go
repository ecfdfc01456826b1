package service

import (
	"context"
	"sync"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	deleteErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		r.byID[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type stubProfileRepo struct {
	mu        sync.Mutex
	byOwner   map[string]*domain.Profile
	deleteErr error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{byOwner: make(map[string]*domain.Profile)}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	c.Experience = append([]domain.Experience(nil), p.Experience...)
	c.Education = append([]domain.Education(nil), p.Education...)
	return &c
}

func (r *stubProfileRepo) FindByOwner(_ context.Context, ownerID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byOwner[ownerID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) List(context.Context) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Profile, 0, len(r.byOwner))
	for _, p := range r.byOwner {
		out = append(out, cloneProfile(p))
	}
	return out, nil
}

func (r *stubProfileRepo) Insert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOwner[p.User]; ok {
		return domain.ErrConcurrentUpdate
	}
	r.byOwner[p.User] = cloneProfile(p)
	return nil
}

func (r *stubProfileRepo) Replace(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byOwner[p.User]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if cur.Version != p.Version {
		return domain.ErrConcurrentUpdate
	}
	p.Version++
	r.byOwner[p.User] = cloneProfile(p)
	return nil
}

func (r *stubProfileRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byOwner, ownerID)
	return nil
}

type stubPostRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Post
	deleteErr error
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{byID: make(map[string]*domain.Post)}
}

func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Likes = append([]domain.Like(nil), p.Likes...)
	c.Comments = append([]domain.Comment(nil), p.Comments...)
	return &c
}

func (r *stubPostRepo) Insert(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = clonePost(p)
	return nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *stubPostRepo) List(context.Context) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Post, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (r *stubPostRepo) Replace(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[p.ID]
	if !ok {
		return domain.ErrPostNotFound
	}
	if cur.Version != p.Version {
		return domain.ErrConcurrentUpdate
	}
	p.Version++
	r.byID[p.ID] = clonePost(p)
	return nil
}

func (r *stubPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubPostRepo) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.byID {
		if p.User == authorID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// inlineLock runs each job under one mutex; enough to exercise callers of
// ports.Serializer without worker goroutines.
type inlineLock struct {
	mu   sync.Mutex
	keys []string
}

func (l *inlineLock) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return fn(ctx)
}

type stubAvatar struct{}

func (stubAvatar) AvatarURL(email string) string { return "avatar:" + email }
