package engine

import "context"

// Resolver maps a pending action and the current game state to a new state
// and an outcome. The engine core treats resolution as a collaborator:
// strategies (scripted, table-driven, model-driven) can be swapped without
// touching session handling.
//
// Contract:
//   - The state passed in is a private working copy; implementations may
//     mutate it freely and return it.
//   - Returning an error leaves the session untouched; the error is
//     propagated to the caller unchanged.
//   - Outcome.Terminal signals the game has ended and the session should be
//     marked completed.
type Resolver interface {
	Resolve(ctx context.Context, state *GameState, payload ActionPayload) (*GameState, *Outcome, error)
}

// ResolverFunc adapts a plain function to the Resolver interface
type ResolverFunc func(ctx context.Context, state *GameState, payload ActionPayload) (*GameState, *Outcome, error)

// Resolve implements Resolver
func (f ResolverFunc) Resolve(ctx context.Context, state *GameState, payload ActionPayload) (*GameState, *Outcome, error) {
	return f(ctx, state, payload)
}
