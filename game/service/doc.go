// Package service provides the business logic layer for the Quest Engine
// backend.
//
// The service package implements:
//   - Session lifecycle: game creation, snapshots, idle expiry sweeps
//   - The action processing pipeline (sequence, validate, resolve, commit)
//   - Paginated turn history retrieval
//   - Scenario listing and loading
//
// Core Interfaces:
//
// GameService is the boundary contract the transport shells (HTTP,
// WebSocket, MCP) call into. ScenarioManager abstracts scenario
// configuration loading. ResolverFactory injects the resolution
// collaborator; the default is the scripted resolver.
//
// Architecture:
//
// The service layer sits between the transports and the session store. All
// writes to a game flow through SubmitAction, which holds the session's turn
// slot for the whole validate/resolve/commit span; reads bypass the
// sequencer and return the latest committed snapshot.
//
// Error Taxonomy:
//
// session.ErrNotFound (unknown game), *ValidationError (malformed payload),
// ErrTerminalSession (game already over), session.ErrBusy (slot wait timed
// out), *ResolutionError (collaborator failure, original error preserved),
// and ErrInvariantViolation (slot discipline breach, a bug). Every failure
// leaves the session's state and turn number untouched, so retrying a
// failed action is always safe.
//
// Usage:
//
//	store := session.NewStore()
//	seq := session.NewSequencer(store, 10*time.Second)
//	svc := service.NewGameService(store, seq, scenarioMgr)
//
//	info, err := svc.CreateGame(ctx, "")
//	result, err := svc.SubmitAction(ctx, info.ID, engine.ActionPayload{Text: "look around"})
package service
