package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Do once the serializer has been shut down.
var ErrStopped = errors.New("serializer stopped")

type job struct {
	ctx  context.Context
	key  string
	fn   func(ctx context.Context) error
	done chan error
	// claimed is won either by the worker about to run the job or by a
	// caller giving up on it. Only the winner decides the outcome.
	claimed atomic.Bool
}

// Serializer routes aggregate jobs to a fixed set of workers using
// consistent hashing on the aggregate key. All jobs for one key run on the
// same worker goroutine, one at a time and in submission order, so their
// read-modify-write cycles never interleave.
//
// A job must not call Do itself: a nested call that hashes to the same
// worker would deadlock.
type Serializer struct {
	workers []chan *job
	stopped chan struct{}
	log     zerolog.Logger
}

// NewSerializer creates a Serializer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSerializer(numWorkers int, log zerolog.Logger) *Serializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Serializer{
		workers: make([]chan *job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range s.workers {
		s.workers[i] = make(chan *job, channelBuffer)
	}
	return s
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// queued and later calls to Do then fail with ErrStopped. Cancel ctx only
// after callers are drained.
func (s *Serializer) Start(ctx context.Context) {
	for i, ch := range s.workers {
		go s.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(s.stopped)
	}()
}

// Do runs fn on the worker owning key and waits for its result. If ctx ends
// or the serializer stops while the job is still queued, the job is skipped
// and Do returns ctx.Err() or ErrStopped. A job that already started always
// reports its own result.
func (s *Serializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	idx := s.shardIndex(key)
	j := &job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}

	select {
	case s.workers[idx] <- j:
		metrics.SerializerQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(s.workers[idx])))
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return s.abandon(j, ctx.Err())
	case <-s.stopped:
		return s.abandon(j, ErrStopped)
	}
}

// abandon returns reason if the job never started, or waits for the result
// of a job that is already running.
func (s *Serializer) abandon(j *job, reason error) error {
	if j.claimed.CompareAndSwap(false, true) {
		return reason
	}
	return <-j.done
}

// run executes one job, turning a panic into an error so the worker survives.
func (s *Serializer) run(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("key", j.key).Msg("aggregate job panicked")
			err = fmt.Errorf("aggregate job %s panicked: %v", j.key, r)
		}
	}()
	return j.fn(j.ctx)
}

// shardIndex maps an aggregate key deterministically to a worker index.
func (s *Serializer) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *Serializer) runWorker(ctx context.Context, id int, ch <-chan *job) {
	depth := metrics.SerializerQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			depth.Set(float64(len(ch)))
			if !j.claimed.CompareAndSwap(false, true) {
				continue
			}
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			start := time.Now()
			err := s.run(j)
			metrics.SerializerJobDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				s.log.Debug().Err(err).
					Str("key", j.key).
					Int("worker_id", id).
					Msg("aggregate job failed")
			}
			j.done <- err
		}
	}
}
