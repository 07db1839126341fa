package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dungeonforge/questengine/game/engine"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrConflict = errors.New("commit without holding the session slot")
	ErrBusy     = errors.New("session busy: action already in flight")
	ErrTerminal = errors.New("session is terminal")
)

// Session is the store-owned record for one game. The store holds the only
// writable reference; everything handed out is a Snapshot copy.
type Session struct {
	ID           string
	State        *engine.GameState
	TurnNumber   int
	History      []engine.TurnRecord
	Status       engine.Status
	CreatedAt    time.Time
	LastActionAt time.Time
}

// Snapshot is an immutable, point-in-time copy of a committed session
type Snapshot struct {
	ID           string              `json:"id"`
	State        *engine.GameState   `json:"state"`
	TurnNumber   int                 `json:"turn_number"`
	History      []engine.TurnRecord `json:"history"`
	Status       engine.Status       `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActionAt time.Time           `json:"last_action_at"`
}

// Store owns all live sessions. All structural mutations and per-session
// commits are atomic with respect to concurrent readers; a reader never
// observes a half-updated session.
type Store struct {
	sessions   map[string]*Session
	transcript TranscriptWriter
	mu         sync.RWMutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions:   make(map[string]*Session),
		transcript: NopTranscript{},
	}
}

// NewStoreWithTranscript creates a store that appends every committed turn
// to the given transcript writer.
func NewStoreWithTranscript(transcript TranscriptWriter) *Store {
	s := NewStore()
	if transcript != nil {
		s.transcript = transcript
	}
	return s
}

// Create allocates a fresh identifier and inserts an active session with
// turn number zero and empty history.
func (s *Store) Create(initialState *engine.GameState) (*Snapshot, error) {
	now := time.Now()
	sess := &Session{
		ID:           uuid.NewString(),
		State:        initialState,
		Status:       engine.StatusActive,
		CreatedAt:    now,
		LastActionAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	snap := snapshotOf(sess)
	s.mu.Unlock()

	return snap, nil
}

// Get returns an immutable copy of the current committed session. It never
// blocks on in-flight actions; while an action is being applied it returns
// the pre-action state.
func (s *Store) Get(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshotOf(sess), nil
}

// Exists reports whether a session with the given ID is live
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Commit atomically replaces the session state, increments the turn number,
// and appends the turn record. The caller must hold the session's slot; a
// missing or mismatched slot is a programming error reported as ErrConflict.
func (s *Store) Commit(slot *Slot, newState *engine.GameState, record engine.TurnRecord) (*Snapshot, error) {
	if slot == nil || slot.Released() {
		return nil, ErrConflict
	}

	s.mu.Lock()

	sess, ok := s.sessions[slot.SessionID()]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if sess.Status != engine.StatusActive {
		s.mu.Unlock()
		return nil, ErrTerminal
	}

	record.Turn = sess.TurnNumber + 1
	record.AppliedAt = time.Now()

	sess.State = newState
	sess.TurnNumber++
	sess.History = append(sess.History, record)
	sess.LastActionAt = record.AppliedAt
	if record.Outcome.Terminal {
		sess.Status = engine.StatusCompleted
	}
	sess.State.TurnCounter = sess.TurnNumber

	snap := snapshotOf(sess)
	s.mu.Unlock()

	// Append outside the lock so slow disk writes never stall readers. The
	// caller still holds the session's slot, so appends for one session stay
	// in commit order.
	if err := s.transcript.Append(snap.ID, record); err != nil {
		// Transcripts are an audit aid, not part of the commit contract
		log.Printf("Warning: failed to append transcript for session %s: %v", snap.ID, err)
	}

	return snap, nil
}

// Expire transitions an active session to expired. It is the only status
// write outside Commit and must be called while holding the session's slot
// so it never races an in-flight action.
func (s *Store) Expire(slot *Slot) (*Snapshot, error) {
	if slot == nil || slot.Released() {
		return nil, ErrConflict
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[slot.SessionID()]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Status == engine.StatusActive {
		sess.Status = engine.StatusExpired
	}

	return snapshotOf(sess), nil
}

// Remove deletes a session
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns snapshots of all live sessions
func (s *Store) List() []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Snapshot, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, snapshotOf(sess))
	}
	return result
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// snapshotOf deep-copies a session. Must be called with at least a read
// lock held.
func snapshotOf(sess *Session) *Snapshot {
	history := make([]engine.TurnRecord, len(sess.History))
	copy(history, sess.History)

	return &Snapshot{
		ID:           sess.ID,
		State:        sess.State.Clone(),
		TurnNumber:   sess.TurnNumber,
		History:      history,
		Status:       sess.Status,
		CreatedAt:    sess.CreatedAt,
		LastActionAt: sess.LastActionAt,
	}
}
