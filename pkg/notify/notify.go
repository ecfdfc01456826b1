// Package notify keeps a short-lived, time-ordered list of user-facing
// notifications. Each entry removes itself after a delay unless dismissed
// first; dismissing cancels the pending removal.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devconnector/devconnector-api/pkg/clock"
)

// DefaultTTL is how long a notification stays listed.
const DefaultTTL = 5 * time.Second

type Kind string

const (
	KindSuccess Kind = "success"
	KindDanger  Kind = "danger"
)

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type Option func(*Queue)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(q *Queue) { q.ttl = d }
}

// WithClock schedules removals on c instead of the real clock.
func WithClock(c clock.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// Queue is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	clock  clock.Clock
	ttl    time.Duration
	items  []Notification
	timers map[string]*clock.Timer
	closed bool
}

func New(opts ...Option) *Queue {
	q := &Queue{
		clock:  clock.Real(),
		ttl:    DefaultTTL,
		timers: make(map[string]*clock.Timer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends a notification and schedules its removal. After Close it
// returns the notification without listing it.
func (q *Queue) Push(message string, kind Kind) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: q.clock.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return n
	}
	q.items = append(q.items, n)
	q.mu.Unlock()

	// Scheduled outside the lock: a fake clock may run the callback inline.
	t := q.clock.AfterFunc(q.ttl, func() { q.expire(n.ID) })

	q.mu.Lock()
	if q.contains(n.ID) {
		q.timers[n.ID] = t
	}
	q.mu.Unlock()
	return n
}

// Dismiss removes the notification now and cancels its scheduled removal.
// It reports whether the id was listed.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	return q.removeLocked(id)
}

// List returns the current notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Close cancels every pending removal and clears the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.items = nil
	q.closed = true
}

func (q *Queue) expire(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.timers, id)
	q.removeLocked(id)
}

func (q *Queue) removeLocked(id string) bool {
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) contains(id string) bool {
	for _, n := range q.items {
		if n.ID == id {
			return true
		}
	}
	return false
}
