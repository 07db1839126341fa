// Package api provides HTTP REST API handlers for the quest engine.
//
// The api package implements:
//   - RESTful endpoints for game lifecycle and play
//   - Scenario listing, retrieval, and creation
//   - WebSocket upgrade handling for turn observers
//
// Endpoints:
//
// Game Lifecycle:
//   - POST /api/games - Create a new game (optional scenario in body)
//   - GET /api/games - List all games with sort/limit query parameters
//   - GET /api/games/{id} - Get a game's full view
//   - DELETE /api/games/{id} - Remove a game
//
// Play:
//   - GET /api/games/{id}/state - Get the committed world state only
//   - POST /api/games/{id}/actions - Submit one free-text action
//   - GET /api/games/{id}/history - Paginated turn history
//
// Scenarios:
//   - GET /api/scenarios - List available scenarios
//   - GET /api/scenarios/{name} - Get one scenario configuration
//   - POST /api/scenarios - Save a new scenario configuration
//
// Actions are sent as POST with JSON body:
//
//	{
//	  "text": "take the torch",
//	  "actor": "player-1" // optional
//	}
//
// Error Handling:
//
// Errors are returned as JSON with a status code that reflects the
// failure class:
//
//	404 - game or scenario does not exist
//	400 - malformed action payload or request body
//	409 - the game has already completed or expired
//	503 - the per-game turn queue timed out
//	502 - the resolution collaborator failed
//	500 - internal invariant violation
//
//	{
//	  "error": "error message"
//	}
package api
