package service

import (
	"time"

	"github.com/dungeonforge/questengine/game/engine"
	"github.com/dungeonforge/questengine/game/session"
)

// GameInfo provides a read-only view of one game session
type GameInfo struct {
	ID           string            `json:"id"`
	Scenario     string            `json:"scenario"`
	State        *engine.GameState `json:"state"`
	TurnNumber   int               `json:"turn_number"`
	Status       engine.Status     `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActionAt time.Time         `json:"last_action_at"`
}

// ActionResult contains the committed session view and the resolution
// outcome for one submitted action.
type ActionResult struct {
	Game    *GameInfo      `json:"game"`
	Outcome engine.Outcome `json:"outcome"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ScenarioInfo provides information about an available scenario
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for game creation
	Name        string `json:"name"`        // Display name
	Description string `json:"description"`
	RoomCount   int    `json:"room_count"`
	HasGoal     bool   `json:"has_goal"`
}

// infoOf converts a store snapshot into the service view
func infoOf(snap *session.Snapshot) *GameInfo {
	if snap == nil {
		return nil
	}
	scenario := ""
	if snap.State != nil {
		scenario = snap.State.Scenario
	}
	return &GameInfo{
		ID:           snap.ID,
		Scenario:     scenario,
		State:        snap.State,
		TurnNumber:   snap.TurnNumber,
		Status:       snap.Status,
		CreatedAt:    snap.CreatedAt,
		LastActionAt: snap.LastActionAt,
	}
}
