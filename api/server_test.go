package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/dungeonforge/questengine/game/engine"
	"github.com/dungeonforge/questengine/game/service"
	"github.com/dungeonforge/questengine/game/session"
	"github.com/dungeonforge/questengine/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Lifecycle
	CreateGameFunc   func(ctx context.Context, scenarioName string) (*service.GameInfo, error)
	GetGameFunc      func(ctx context.Context, gameID string) (*service.GameInfo, error)
	ListGamesFunc    func(ctx context.Context) ([]*service.GameInfo, error)
	DeleteGameFunc   func(ctx context.Context, gameID string) error
	SweepExpiredFunc func(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error)

	// Play
	SubmitActionFunc func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error)
	GetHistoryFunc   func(ctx context.Context, gameID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Scenarios
	ListScenariosFunc func(ctx context.Context) ([]*service.ScenarioInfo, error)
	LoadScenarioFunc  func(ctx context.Context, name string) (*engine.ScenarioConfig, error)
	SaveScenarioFunc  func(ctx context.Context, name string, config *engine.ScenarioConfig) error
}

func (m *MockGameService) CreateGame(ctx context.Context, scenarioName string) (*service.GameInfo, error) {
	if m.CreateGameFunc != nil {
		return m.CreateGameFunc(ctx, scenarioName)
	}
	return &service.GameInfo{
		ID:        "test-game",
		Scenario:  scenarioName,
		Status:    engine.StatusActive,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) GetGame(ctx context.Context, gameID string) (*service.GameInfo, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(ctx, gameID)
	}
	return &service.GameInfo{
		ID:        gameID,
		Scenario:  "test-scenario",
		Status:    engine.StatusActive,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) ListGames(ctx context.Context) ([]*service.GameInfo, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc(ctx)
	}
	return []*service.GameInfo{}, nil
}

func (m *MockGameService) DeleteGame(ctx context.Context, gameID string) error {
	if m.DeleteGameFunc != nil {
		return m.DeleteGameFunc(ctx, gameID)
	}
	return nil
}

func (m *MockGameService) SweepExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error) {
	if m.SweepExpiredFunc != nil {
		return m.SweepExpiredFunc(ctx, now, idleTimeout)
	}
	return 0, nil
}

func (m *MockGameService) SubmitAction(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
	if m.SubmitActionFunc != nil {
		return m.SubmitActionFunc(ctx, gameID, payload)
	}
	return &service.ActionResult{
		Game: &service.GameInfo{
			ID:         gameID,
			TurnNumber: 1,
			Status:     engine.StatusActive,
			State:      &engine.GameState{},
		},
		Outcome: engine.Outcome{Narrative: "ok"},
	}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, gameID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, gameID, opts)
	}
	return &service.HistoryResponse{
		Turns:      []engine.TurnRecord{},
		TotalTurns: 0,
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListScenarios(ctx context.Context) ([]*service.ScenarioInfo, error) {
	if m.ListScenariosFunc != nil {
		return m.ListScenariosFunc(ctx)
	}
	return []*service.ScenarioInfo{}, nil
}

func (m *MockGameService) LoadScenario(ctx context.Context, name string) (*engine.ScenarioConfig, error) {
	if m.LoadScenarioFunc != nil {
		return m.LoadScenarioFunc(ctx, name)
	}
	return &engine.ScenarioConfig{
		Name:        name,
		Description: "Test scenario",
	}, nil
}

func (m *MockGameService) SaveScenario(ctx context.Context, name string, config *engine.ScenarioConfig) error {
	if m.SaveScenarioFunc != nil {
		return m.SaveScenarioFunc(ctx, name, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Game Lifecycle Tests

func TestCreateGame(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create game with default scenario",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateGameFunc = func(ctx context.Context, scenarioName string) (*service.GameInfo, error) {
					return &service.GameInfo{
						ID:        "game-123",
						Scenario:  "The Forgotten Keep",
						Status:    engine.StatusActive,
						CreatedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GameInfo
				parseResponse(t, w, &resp)
				if resp.ID != "game-123" {
					t.Errorf("Expected game ID game-123, got %s", resp.ID)
				}
				if resp.TurnNumber != 0 {
					t.Errorf("Expected turn number 0, got %d", resp.TurnNumber)
				}
			},
		},
		{
			name:        "Create game with specific scenario",
			requestBody: map[string]string{"scenario": "crypt"},
			setupMock: func(m *MockGameService) {
				m.CreateGameFunc = func(ctx context.Context, scenarioName string) (*service.GameInfo, error) {
					if scenarioName != "crypt" {
						t.Errorf("Expected scenario 'crypt', got %s", scenarioName)
					}
					return &service.GameInfo{
						ID:       "game-456",
						Scenario: scenarioName,
						Status:   engine.StatusActive,
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GameInfo
				parseResponse(t, w, &resp)
				if resp.Scenario != "crypt" {
					t.Errorf("Expected scenario 'crypt', got %s", resp.Scenario)
				}
			},
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateGameFunc = func(ctx context.Context, scenarioName string) (*service.GameInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/games", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListGames(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List multiple games",
			setupMock: func(m *MockGameService) {
				m.ListGamesFunc = func(ctx context.Context) ([]*service.GameInfo, error) {
					return []*service.GameInfo{
						{ID: "game-1", Scenario: "keep"},
						{ID: "game-2", Scenario: "crypt"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 2 {
					t.Errorf("Expected count 2, got %v", resp["count"])
				}
				games := resp["games"].([]interface{})
				if len(games) != 2 {
					t.Errorf("Expected 2 games, got %d", len(games))
				}
			},
		},
		{
			name: "Handle empty game list",
			setupMock: func(m *MockGameService) {
				m.ListGamesFunc = func(ctx context.Context) ([]*service.GameInfo, error) {
					return []*service.GameInfo{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 0 {
					t.Errorf("Expected count 0, got %v", resp["count"])
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.ListGamesFunc = func(ctx context.Context) ([]*service.GameInfo, error) {
					return nil, fmt.Errorf("store error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "store error" {
					t.Errorf("Expected error 'store error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/games", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetGame(t *testing.T) {
	tests := []struct {
		name           string
		gameID         string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "Get existing game",
			gameID: "game-123",
			setupMock: func(m *MockGameService) {
				m.GetGameFunc = func(ctx context.Context, gameID string) (*service.GameInfo, error) {
					if gameID != "game-123" {
						return nil, session.ErrNotFound
					}
					return &service.GameInfo{
						ID:         gameID,
						Scenario:   "keep",
						TurnNumber: 3,
						Status:     engine.StatusActive,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GameInfo
				parseResponse(t, w, &resp)
				if resp.ID != "game-123" || resp.TurnNumber != 3 {
					t.Errorf("Unexpected game info: %+v", resp)
				}
			},
		},
		{
			name:   "Game not found",
			gameID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.GetGameFunc = func(ctx context.Context, gameID string) (*service.GameInfo, error) {
					return nil, fmt.Errorf("game %s: %w", gameID, session.ErrNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/games/"+tt.gameID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.gameID})

			server.handleGetGame(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestDeleteGame(t *testing.T) {
	tests := []struct {
		name           string
		gameID         string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:   "Delete existing game",
			gameID: "game-123",
			setupMock: func(m *MockGameService) {
				m.DeleteGameFunc = func(ctx context.Context, gameID string) error {
					if gameID != "game-123" {
						return session.ErrNotFound
					}
					return nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Delete non-existent game",
			gameID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.DeleteGameFunc = func(ctx context.Context, gameID string) error {
					return session.ErrNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("DELETE", "/api/games/"+tt.gameID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.gameID})

			server.handleDeleteGame(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// Play Tests

func TestSubmitAction(t *testing.T) {
	tests := []struct {
		name           string
		gameID         string
		requestBody    map[string]interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Valid action",
			gameID:      "game-123",
			requestBody: map[string]interface{}{"text": "look around"},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					if payload.Text != "look around" {
						t.Errorf("Expected text 'look around', got %s", payload.Text)
					}
					if payload.SubmittedAt.IsZero() {
						t.Error("Expected SubmittedAt to be stamped by the handler")
					}
					return &service.ActionResult{
						Game: &service.GameInfo{
							ID:         gameID,
							TurnNumber: 4,
							Status:     engine.StatusActive,
							State:      &engine.GameState{CurrentRoom: "guardroom"},
						},
						Outcome: engine.Outcome{Narrative: "You see stone walls."},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.ActionResult
				parseResponse(t, w, &resp)
				if resp.Game.TurnNumber != 4 {
					t.Errorf("Expected turn number 4, got %d", resp.Game.TurnNumber)
				}
				if resp.Outcome.Narrative != "You see stone walls." {
					t.Errorf("Unexpected narrative: %s", resp.Outcome.Narrative)
				}
			},
		},
		{
			name:        "Empty action text rejected",
			gameID:      "game-123",
			requestBody: map[string]interface{}{"text": ""},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					return nil, &service.ValidationError{Reason: "action text is empty"}
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Game not found",
			gameID:      "nonexistent",
			requestBody: map[string]interface{}{"text": "look"},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					return nil, session.ErrNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Ended game rejects actions",
			gameID:      "game-done",
			requestBody: map[string]interface{}{"text": "look"},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					return nil, service.ErrTerminalSession
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "Busy session surfaces as unavailable",
			gameID:      "game-busy",
			requestBody: map[string]interface{}{"text": "look"},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					return nil, fmt.Errorf("acquire turn slot: %w", session.ErrBusy)
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:        "Resolver failure surfaces as bad gateway",
			gameID:      "game-123",
			requestBody: map[string]interface{}{"text": "look"},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					return nil, &service.ResolutionError{Err: fmt.Errorf("narrator timed out")}
				}
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:        "Invariant violation surfaces as internal error",
			gameID:      "game-123",
			requestBody: map[string]interface{}{"text": "look"},
			setupMock: func(m *MockGameService) {
				m.SubmitActionFunc = func(ctx context.Context, gameID string, payload engine.ActionPayload) (*service.ActionResult, error) {
					return nil, service.ErrInvariantViolation
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/games/"+tt.gameID+"/actions", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": tt.gameID})

			server.handleSubmitAction(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetHistoryEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		gameID         string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Default pagination",
			gameID:      "game-123",
			queryParams: "",
			setupMock: func(m *MockGameService) {
				m.GetHistoryFunc = func(ctx context.Context, gameID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != 1 || opts.Limit != 20 {
						t.Errorf("Expected default page=1, limit=20, got page=%d, limit=%d", opts.Page, opts.Limit)
					}
					return &service.HistoryResponse{
						Turns: []engine.TurnRecord{
							{Turn: 2, Payload: engine.ActionPayload{Text: "go north"}},
							{Turn: 1, Payload: engine.ActionPayload{Text: "look"}},
						},
						TotalTurns: 2,
						Page:       1,
						PageSize:   20,
						TotalPages: 1,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.HistoryResponse
				parseResponse(t, w, &resp)
				if resp.TotalTurns != 2 {
					t.Errorf("Expected 2 total turns, got %d", resp.TotalTurns)
				}
			},
		},
		{
			name:        "Custom pagination parameters",
			gameID:      "game-123",
			queryParams: "?page=2&limit=10&order=asc",
			setupMock: func(m *MockGameService) {
				m.GetHistoryFunc = func(ctx context.Context, gameID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != 2 || opts.Limit != 10 || opts.Order != "asc" {
						t.Errorf("Expected page=2, limit=10, order=asc, got page=%d, limit=%d, order=%s",
							opts.Page, opts.Limit, opts.Order)
					}
					return &service.HistoryResponse{
						Page:     2,
						PageSize: 10,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Game not found",
			gameID:      "nonexistent",
			queryParams: "",
			setupMock: func(m *MockGameService) {
				m.GetHistoryFunc = func(ctx context.Context, gameID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					return nil, session.ErrNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/games/"+tt.gameID+"/history"+tt.queryParams, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.gameID})

			server.handleGetHistory(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

// Scenario Tests

func TestListScenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List available scenarios",
			setupMock: func(m *MockGameService) {
				m.ListScenariosFunc = func(ctx context.Context) ([]*service.ScenarioInfo, error) {
					return []*service.ScenarioInfo{
						{Name: "The Forgotten Keep", ScenarioID: "", RoomCount: 3, HasGoal: true},
						{Name: "Crypt of Echoes", ScenarioID: "crypt", RoomCount: 7, HasGoal: true},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp []*service.ScenarioInfo
				parseResponse(t, w, &resp)
				if len(resp) != 2 {
					t.Errorf("Expected 2 scenarios, got %d", len(resp))
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.ListScenariosFunc = func(ctx context.Context) ([]*service.ScenarioInfo, error) {
					return nil, fmt.Errorf("scenario error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/scenarios", nil)

			server.handleListScenarios(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetScenario(t *testing.T) {
	tests := []struct {
		name           string
		scenarioName   string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:         "Get existing scenario",
			scenarioName: "crypt",
			setupMock: func(m *MockGameService) {
				m.LoadScenarioFunc = func(ctx context.Context, name string) (*engine.ScenarioConfig, error) {
					if name != "crypt" {
						return nil, fmt.Errorf("scenario not found")
					}
					return &engine.ScenarioConfig{
						Name:        "crypt",
						Description: "A sunken crypt",
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.ScenarioConfig
				parseResponse(t, w, &resp)
				if resp.Name != "crypt" {
					t.Errorf("Expected scenario name 'crypt', got %s", resp.Name)
				}
			},
		},
		{
			name:         "Strip .json extension",
			scenarioName: "crypt.json",
			setupMock: func(m *MockGameService) {
				m.LoadScenarioFunc = func(ctx context.Context, name string) (*engine.ScenarioConfig, error) {
					if name != "crypt" {
						t.Errorf("Expected scenario name 'crypt' (without .json), got %s", name)
					}
					return &engine.ScenarioConfig{Name: "crypt"}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:         "Scenario not found",
			scenarioName: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.LoadScenarioFunc = func(ctx context.Context, name string) (*engine.ScenarioConfig, error) {
					return nil, fmt.Errorf("scenario not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/scenarios/"+tt.scenarioName, nil)
			req = mux.SetURLVars(req, map[string]string{"name": tt.scenarioName})

			server.handleGetScenario(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateScenario(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "Save valid scenario",
			requestBody: map[string]interface{}{
				"name":        "crypt",
				"description": "A sunken crypt",
			},
			setupMock: func(m *MockGameService) {
				m.SaveScenarioFunc = func(ctx context.Context, name string, config *engine.ScenarioConfig) error {
					if name != "crypt" {
						t.Errorf("Expected scenario name 'crypt', got %s", name)
					}
					return nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing name rejected",
			requestBody:    map[string]interface{}{"description": "no name"},
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/scenarios", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestWebSocketEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing game parameter",
			queryParams:    "",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid game",
			queryParams: "?game=invalid",
			setupMock: func(m *MockGameService) {
				m.GetGameFunc = func(ctx context.Context, gameID string) (*service.GameInfo, error) {
					return nil, session.ErrNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Valid game",
			queryParams: "?game=game-123",
			setupMock: func(m *MockGameService) {
				m.GetGameFunc = func(ctx context.Context, gameID string) (*service.GameInfo, error) {
					return &service.GameInfo{
						ID:       gameID,
						Scenario: "keep",
					}, nil
				}
			},
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			// For WebSocket upgrade test, we need proper headers
			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// WebSocket upgrade fails in unit tests due to httptest.ResponseRecorder limitations
			if tt.expectedStatus == http.StatusSwitchingProtocols {
				// httptest.ResponseRecorder does not implement http.Hijacker,
				// so the upgrade attempt reports an internal error instead
				if w.Code == http.StatusInternalServerError {
					return
				}
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockGameService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)

	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %s", resp["status"])
	}
}
