package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dungeonforge/questengine/game/engine"
	"github.com/dungeonforge/questengine/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Quest Engine",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Quest Engine - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Explore a text-described world one action at a time. Reach the scenario's
goal room to win, or type "give up" to end the quest.

AVAILABLE TOOLS:
- create_game: Start a new game (optional scenario selection)
- get_game: Get a game's current state and narration
- list_games: List all active games
- submit_action: Submit one free-text action ("look", "go north", "take torch", ...)
- game_history: View past turns with pagination
- list_scenarios: List available scenarios
- game_instructions: Get comprehensive game instructions

NOTE: Actions within one game are applied strictly one at a time in arrival
order. Submit an action and read the returned narration before the next one.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new game with optional scenario selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario": map[string]interface{}{
					"type":        "string",
					"description": "Name of the scenario to use (optional, defaults to the built-in scenario)",
				},
			},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all active games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the current state and latest narration of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID to retrieve",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_action",
		Description: "Submit one free-text action to a game and get the resulting narration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The action text, e.g. \"look\", \"go north\", \"take torch\", \"give up\"",
				},
				"actor": map[string]interface{}{
					"type":        "string",
					"description": "Optional identifier of the acting player",
				},
			},
			Required: []string{"game_id", "text"},
		},
	}, c.handleSubmitAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_history",
		Description: "Get the turn history of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGameHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	scenario, _ := args["scenario"].(string)

	body := map[string]string{}
	if scenario != "" {
		body["scenario"] = scenario
	}

	var game service.GameInfo
	err := c.apiCall("POST", "/api/games", body, &game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created game: %s\nScenario: %s\n\n%s",
		game.ID, game.Scenario, formatGameState(game.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Games []service.GameInfo `json:"games"`
	}

	err := c.apiCall("GET", "/api/games", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		result += fmt.Sprintf("- %s (Scenario: %s, Turn: %d, Status: %s)\n",
			g.ID, g.Scenario, g.TurnNumber, g.Status)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	var game service.GameInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/games/%s", gameID), nil, &game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameInfo(&game)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSubmitAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	text, _ := args["text"].(string)
	actor, _ := args["actor"].(string)

	body := map[string]interface{}{
		"text": text,
	}
	if actor != "" {
		body["actor"] = actor
	}

	var result service.ActionResult
	err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/actions", gameID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatActionResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleGameHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/games/%s/history%s", gameID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []service.ScenarioInfo
	err := c.apiCall("GET", "/api/scenarios", nil, &scenarios)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Scenarios:\n\n"
	for _, s := range scenarios {
		id := s.ScenarioID
		if id == "" {
			id = "(default)"
		}
		result += fmt.Sprintf("• %s [%s]\n  %s\n  Rooms: %d, Goal: %v\n\n",
			s.Name, id, s.Description, s.RoomCount, s.HasGoal)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Quest Engine - Complete Instructions

GAME OBJECTIVE:
Explore a text-described world and reach the scenario's goal room.

GAME MECHANICS:
• Every action is free text; the narrator resolves it and replies with prose
• Exactly one action is applied at a time per game, in arrival order
• Each committed action increments the game's turn number by one
• The game ends when the goal room is reached (victory) or you give up
• Ended games reject further actions

RECOGNIZED COMMANDS:
• look - describe the current room, its exits and items
• go <direction> (also move/walk) - travel through an exit
• take <item> (also get) - pick an item up
• drop <item> - put an item down
• inventory - list what you carry
• say <words> - speak out loud
• give up - abandon the quest

Anything else is echoed back by the narrator without changing the world.
Directions and item names are matched case-insensitively; leading articles
("the", "a") are ignored.

MULTI-GAME PLAY:
• Multiple games can run simultaneously, each with independent state
• Actions on different games never wait on each other
• Use game_history to review what has happened so far

STRATEGY FOR AI AGENTS:
1. Start with "look" to learn the current room's exits and items
2. Map the world as you travel; exits name their directions explicitly
3. Pick up items you find, some scenarios need them
4. Submit one action, read the narration, then decide the next one

Good luck on your quest!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatGameInfo(game *service.GameInfo) string {
	return fmt.Sprintf("Game: %s\nScenario: %s\nTurn: %d\nStatus: %s\nCreated: %s\n\n%s",
		game.ID, game.Scenario, game.TurnNumber, game.Status,
		game.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(game.State))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	if state.Narration != "" {
		result.WriteString(state.Narration)
		result.WriteString("\n\n")
	}

	room := state.Room()
	if room != nil {
		result.WriteString(fmt.Sprintf("Location: %s\n", room.Name))
		if len(room.Exits) > 0 {
			dirs := make([]string, 0, len(room.Exits))
			for dir := range room.Exits {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			result.WriteString(fmt.Sprintf("Exits: %s\n", strings.Join(dirs, ", ")))
		}
		if len(room.Items) > 0 {
			result.WriteString(fmt.Sprintf("Items here: %s\n", strings.Join(room.Items, ", ")))
		}
	}

	if len(state.Inventory) > 0 {
		result.WriteString(fmt.Sprintf("Inventory: %s\n", strings.Join(state.Inventory, ", ")))
	}

	result.WriteString(fmt.Sprintf("Turn: %d", state.TurnCounter))

	return result.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder

	b.WriteString(result.Outcome.Narrative)
	b.WriteString("\n")

	if result.Outcome.Terminal {
		switch result.Outcome.Reason {
		case "victory":
			b.WriteString("\n*** VICTORY! The quest is complete. ***\n")
		default:
			b.WriteString("\n*** The quest has ended. ***\n")
		}
	}

	if result.Game != nil {
		b.WriteString(fmt.Sprintf("\nTurn: %d | Status: %s",
			result.Game.TurnNumber, result.Game.Status))
		if room := result.Game.State.Room(); room != nil {
			b.WriteString(fmt.Sprintf(" | Location: %s", room.Name))
		}
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Turn History (Page %d/%d) - Total turns: %d\n\n",
		history.Page, history.TotalPages, history.TotalTurns)

	for _, turn := range history.Turns {
		status := ""
		if turn.Outcome.Terminal {
			status = fmt.Sprintf(" [%s]", turn.Outcome.Reason)
		}
		result += fmt.Sprintf("%d. > %s\n   %s%s\n",
			turn.Turn, turn.Payload.Text, turn.Outcome.Narrative, status)
	}

	return result
}
