package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultAcquireTimeout bounds how long a submission waits for its turn
// before failing with ErrBusy.
const DefaultAcquireTimeout = 10 * time.Second

// Slot is the per-session mutual-exclusion token. Holding a slot is the
// precondition for committing to the store. Release is idempotent and safe
// to defer on every exit path.
type Slot struct {
	sessionID string
	seq       *Sequencer
	released  atomic.Bool
}

// SessionID returns the session this slot serializes
func (s *Slot) SessionID() string { return s.sessionID }

// Released reports whether the slot has already been given back
func (s *Slot) Released() bool { return s.released.Load() }

// Release returns the slot, waking the next queued waiter for the session.
// Calling it more than once is a no-op.
func (s *Slot) Release() {
	if s.released.CompareAndSwap(false, true) {
		s.seq.release(s.sessionID)
	}
}

// waiter is one queued acquisition attempt. ready is buffered so a release
// that races a cancellation never blocks; abandoned marks waiters that gave
// up while queued so release can skip them without disturbing FIFO order.
type waiter struct {
	ready     chan struct{}
	abandoned bool
}

type sessionQueue struct {
	held    bool
	waiters []*waiter
}

// Sequencer guarantees at most one in-flight action per session while
// letting distinct sessions proceed fully in parallel. Waiters for the same
// session are served strictly in arrival order.
type Sequencer struct {
	store   *Store
	timeout time.Duration
	queues  map[string]*sessionQueue
	mu      sync.Mutex
}

// NewSequencer creates a sequencer bound to a store. The timeout caps how
// long Acquire waits; zero or negative applies DefaultAcquireTimeout.
func NewSequencer(store *Store, timeout time.Duration) *Sequencer {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	return &Sequencer{
		store:   store,
		timeout: timeout,
		queues:  make(map[string]*sessionQueue),
	}
}

// Acquire blocks until no other action holds the slot for this session,
// then returns a scoped handle. It fails immediately with ErrNotFound when
// the session does not exist, and with ErrBusy when the configured maximum
// wait (or the caller's context) elapses first. A caller that gives up while
// queued is cleanly dequeued without corrupting FIFO order for the rest.
func (q *Sequencer) Acquire(ctx context.Context, sessionID string) (*Slot, error) {
	if !q.store.Exists(sessionID) {
		return nil, ErrNotFound
	}

	q.mu.Lock()
	queue, ok := q.queues[sessionID]
	if !ok {
		queue = &sessionQueue{}
		q.queues[sessionID] = queue
	}

	if !queue.held && len(queue.waiters) == 0 {
		queue.held = true
		q.mu.Unlock()
		return &Slot{sessionID: sessionID, seq: q}, nil
	}

	w := &waiter{ready: make(chan struct{}, 1)}
	queue.waiters = append(queue.waiters, w)
	q.mu.Unlock()

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case <-w.ready:
		return &Slot{sessionID: sessionID, seq: q}, nil
	case <-ctx.Done():
		return nil, q.abandon(sessionID, w, ctx.Err())
	case <-timer.C:
		return nil, q.abandon(sessionID, w, ErrBusy)
	}
}

// abandon marks a queued waiter as given up. If the slot was granted in the
// same instant, the grant is handed straight to the next waiter instead.
func (q *Sequencer) abandon(sessionID string, w *waiter, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	select {
	case <-w.ready:
		// Granted while we were cancelling; pass the slot along
		q.grantNextLocked(sessionID)
		return cause
	default:
	}

	w.abandoned = true
	return cause
}

// release hands the slot to the next non-abandoned waiter in FIFO order, or
// frees it when the queue is empty.
func (q *Sequencer) release(sessionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.grantNextLocked(sessionID)
}

func (q *Sequencer) grantNextLocked(sessionID string) {
	queue, ok := q.queues[sessionID]
	if !ok {
		return
	}

	for len(queue.waiters) > 0 {
		next := queue.waiters[0]
		queue.waiters = queue.waiters[1:]
		if next.abandoned {
			continue
		}
		next.ready <- struct{}{}
		return
	}

	queue.held = false
	delete(q.queues, sessionID)
}
