// Package session provides session storage and turn sequencing for the
// Quest Engine backend.
//
// The session package implements:
//   - A thread-safe store owning all live sessions
//   - Atomic commit of state, turn number, and history as one unit
//   - A per-session FIFO sequencer (the turn "slot")
//   - JSONL transcript export of committed turns
//
// Core Types:
//
// Store owns every Session and hands out immutable Snapshot copies; no other
// component retains a writable reference. Sequencer serializes actions
// within one session while leaving other sessions fully parallel. Slot is
// the scoped token whose possession authorizes Store.Commit.
//
// Concurrency:
//
// Reads never block on in-flight actions: Get returns the last committed
// snapshot even while an action holds the slot. Commit requires the slot, so
// turn numbers increase by exactly one per committed action and history
// order matches slot-grant order, which is arrival order.
//
// Usage:
//
//	store := session.NewStore()
//	seq := session.NewSequencer(store, 10*time.Second)
//
//	snap, _ := store.Create(initialState)
//
//	slot, err := seq.Acquire(ctx, snap.ID)
//	if err != nil {
//		return err
//	}
//	defer slot.Release()
//
//	committed, err := store.Commit(slot, newState, record)
//
// Transcripts:
//
// A TranscriptWriter observes every committed turn. The file implementation
// appends one JSON line per turn to a per-session file for audit and replay
// review; it is deliberately not a recovery mechanism.
package session
