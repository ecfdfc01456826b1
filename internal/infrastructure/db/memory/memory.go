// Package memory keeps users, profiles and posts in process memory. It backs
// STORAGE_DRIVER=memory for local runs and the end-to-end tests, and honours
// the same uniqueness and version rules as the MongoDB repositories.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// Store bundles the in-memory repositories.
type Store struct {
	Users    *UserRepository
	Profiles *ProfileRepository
	Posts    *PostRepository
}

func NewStore() *Store {
	return &Store{
		Users:    &UserRepository{byID: map[string]domain.User{}},
		Profiles: &ProfileRepository{byOwner: map[string]*domain.Profile{}},
		Posts:    &PostRepository{byID: map[string]*domain.Post{}},
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type UserRepository struct {
	mu   sync.RWMutex
	byID map[string]domain.User
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.byID[user.ID] = *user
	out := *user
	return &out, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type ProfileRepository struct {
	mu      sync.RWMutex
	byOwner map[string]*domain.Profile
}

func (r *ProfileRepository) FindByOwner(_ context.Context, ownerID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byOwner[ownerID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) List(context.Context) ([]*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Profile, 0, len(r.byOwner))
	for _, p := range r.byOwner {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ProfileRepository) Insert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOwner[p.User]; ok {
		return domain.ErrConcurrentUpdate
	}
	r.byOwner[p.User] = cloneProfile(p)
	return nil
}

func (r *ProfileRepository) Replace(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byOwner[p.User]
	if !ok || cur.ID != p.ID {
		return domain.ErrProfileNotFound
	}
	if cur.Version != p.Version {
		return domain.ErrConcurrentUpdate
	}
	p.Version++
	r.byOwner[p.User] = cloneProfile(p)
	return nil
}

func (r *ProfileRepository) DeleteByOwner(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byOwner, ownerID)
	return nil
}

type PostRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Post
}

func (r *PostRepository) Insert(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = clonePost(p)
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *PostRepository) List(context.Context) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Post, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, clonePost(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PostRepository) Replace(_ context.Context, p *domain.Post) error {
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

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *PostRepository) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
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

func cloneProfile(p *domain.Profile) *domain.Profile {
	out := *p
	out.Skills = append([]string{}, p.Skills...)
	out.Experience = append([]domain.Experience{}, p.Experience...)
	out.Education = append([]domain.Education{}, p.Education...)
	return &out
}

func clonePost(p *domain.Post) *domain.Post {
	out := *p
	out.Likes = append([]domain.Like{}, p.Likes...)
	out.Comments = append([]domain.Comment{}, p.Comments...)
	return &out
}
