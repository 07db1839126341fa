// Package mcp provides a Model Context Protocol interface for the quest engine.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions that proxy to the REST API
//   - Stdio transport for local MCP clients
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_game: Start a new game with optional scenario selection
//   - get_game: Get a game's state and latest narration
//   - list_games: List all active games
//   - submit_action: Submit one free-text action and get the narration
//   - game_history: Retrieve turn history with pagination
//   - list_scenarios: List available scenarios
//   - game_instructions: Get comprehensive gameplay instructions
//
// Multi-Game Play:
//
// All play tools take a game_id parameter. AI agents can manage multiple
// concurrent games independently; the engine serializes actions per game
// in arrival order, so agents on different games never block each other.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
