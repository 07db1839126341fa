// Package engine provides the game-domain core for the Quest Engine backend.
//
// The engine package implements:
//   - The self-contained game state model (rooms, characters, inventory)
//   - Scenario configuration loading and validation
//   - The Resolver contract for pluggable action resolution
//   - A scripted, table-driven default resolver
//
// Core Types:
//
// GameState is the serializable value a session owns; it carries no external
// references so it can be cloned for snapshots and transcripts. Resolver is
// the fixed contract (state, payload) -> (state, outcome) that lets scripted,
// table-driven, or model-driven resolution strategies be substituted without
// touching session handling. ScenarioConfig defines a playable world loaded
// from JSON files.
//
// Usage:
//
//	config := engine.DefaultScenario()
//	state := engine.InitGameStateFromConfig(config)
//
//	resolver := engine.NewScriptedResolver(config)
//	next, outcome, err := resolver.Resolve(ctx, state.Clone(), payload)
//
// Scenario Rules:
//
// A scenario is a directed room graph with a start room and an optional goal
// room. Items can be picked up and dropped; entering the goal room ends the
// game in victory. Validation checks exit targets and goal reachability so a
// published scenario is always winnable.
package engine
