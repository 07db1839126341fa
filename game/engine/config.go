package engine

import (
	"fmt"
	"strings"
)

// ScenarioConfig represents a scenario definition loaded from JSON
type ScenarioConfig struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Opening           string   `json:"opening"`
	StartRoom         string   `json:"start_room"`
	GoalRoom          string   `json:"goal_room"`
	Rooms             []Room   `json:"rooms"`
	StartingInventory []string `json:"starting_inventory,omitempty"`
	CharacterTemplate struct {
		Name      string `json:"name"`
		Class     string `json:"class"`
		HitPoints int    `json:"hit_points"`
	} `json:"character_template"`
	Messages struct {
		Victory      string `json:"victory"`
		GaveUp       string `json:"gave_up"`
		UnknownVerb  string `json:"unknown_verb"`
		CannotGo     string `json:"cannot_go"`
		ItemTaken    string `json:"item_taken"`
		ItemDropped  string `json:"item_dropped"`
		ItemMissing  string `json:"item_missing"`
		EmptyPockets string `json:"empty_pockets"`
	} `json:"messages"`
}

// ValidateScenarioConfig checks that a scenario is structurally sound:
// rooms exist and are unique, exits point at real rooms, the start and goal
// rooms exist, and the goal is reachable from the start.
func ValidateScenarioConfig(config *ScenarioConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(config.Rooms) < MinRooms {
		return fmt.Errorf("scenario must define at least %d room", MinRooms)
	}
	if len(config.Rooms) > MaxRooms {
		return fmt.Errorf("scenario defines %d rooms, maximum is %d", len(config.Rooms), MaxRooms)
	}

	rooms := make(map[string]*Room, len(config.Rooms))
	for i := range config.Rooms {
		room := &config.Rooms[i]
		if strings.TrimSpace(room.ID) == "" {
			return fmt.Errorf("room %d has an empty ID", i)
		}
		if _, dup := rooms[room.ID]; dup {
			return fmt.Errorf("duplicate room ID: %s", room.ID)
		}
		rooms[room.ID] = room
	}

	for _, room := range config.Rooms {
		for dir, target := range room.Exits {
			if _, ok := rooms[target]; !ok {
				return fmt.Errorf("room %s exit %q points at unknown room %s", room.ID, dir, target)
			}
		}
	}

	if config.StartRoom == "" {
		return fmt.Errorf("start_room is required")
	}
	if _, ok := rooms[config.StartRoom]; !ok {
		return fmt.Errorf("start_room %s does not exist", config.StartRoom)
	}
	if config.GoalRoom != "" {
		if _, ok := rooms[config.GoalRoom]; !ok {
			return fmt.Errorf("goal_room %s does not exist", config.GoalRoom)
		}
		if !Reachable(rooms, config.StartRoom, config.GoalRoom) {
			return fmt.Errorf("goal_room %s is unreachable from start_room %s", config.GoalRoom, config.StartRoom)
		}
	}

	return nil
}

// Reachable reports whether target can be reached from start by following
// room exits (breadth-first walk over the room graph).
func Reachable(rooms map[string]*Room, start, target string) bool {
	if start == target {
		return true
	}

	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		room, ok := rooms[current]
		if !ok {
			continue
		}
		for _, next := range room.Exits {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return false
}

// InitGameStateFromConfig builds the initial game state for a scenario
func InitGameStateFromConfig(config *ScenarioConfig) *GameState {
	state := &GameState{
		Scenario:    config.Name,
		Narration:   config.Opening,
		CurrentRoom: config.StartRoom,
		Rooms:       make(map[string]*Room, len(config.Rooms)),
		Flags:       make(map[string]bool),
	}

	for i := range config.Rooms {
		room := config.Rooms[i]
		cp := &Room{
			ID:          room.ID,
			Name:        room.Name,
			Description: room.Description,
		}
		if room.Exits != nil {
			cp.Exits = make(map[string]string, len(room.Exits))
			for dir, target := range room.Exits {
				cp.Exits[dir] = target
			}
		}
		if room.Items != nil {
			cp.Items = append([]string(nil), room.Items...)
		}
		state.Rooms[room.ID] = cp
	}

	if config.StartingInventory != nil {
		state.Inventory = append([]string(nil), config.StartingInventory...)
	}

	tmpl := config.CharacterTemplate
	if tmpl.Name != "" {
		hp := tmpl.HitPoints
		if hp <= 0 {
			hp = 10
		}
		state.Characters = []Character{{
			Name:      tmpl.Name,
			Class:     tmpl.Class,
			HitPoints: hp,
			MaxHP:     hp,
		}}
	}

	return state
}

// DefaultScenario returns the built-in scenario used when no scenario
// directory is configured or the caller does not name one.
func DefaultScenario() *ScenarioConfig {
	config := &ScenarioConfig{
		Name:        "The Forgotten Keep",
		Description: "A small starter dungeon with three rooms and a way out.",
		Opening:     "You wake on cold flagstones. A guardroom surrounds you, its torch guttering.",
		StartRoom:   "guardroom",
		GoalRoom:    "gatehouse",
		Rooms: []Room{
			{
				ID:          "guardroom",
				Name:        "Guardroom",
				Description: "Rusted weapon racks line the walls. A corridor leads north.",
				Exits:       map[string]string{"north": "corridor"},
				Items:       []string{"torch"},
			},
			{
				ID:          "corridor",
				Name:        "Cracked Corridor",
				Description: "Moss slicks the stones. The guardroom lies south, the gatehouse north.",
				Exits:       map[string]string{"south": "guardroom", "north": "gatehouse"},
				Items:       []string{"iron key"},
			},
			{
				ID:          "gatehouse",
				Name:        "Gatehouse",
				Description: "Daylight pours through the raised portcullis. Freedom.",
				Exits:       map[string]string{"south": "corridor"},
			},
		},
	}

	config.CharacterTemplate.Name = "Adventurer"
	config.CharacterTemplate.Class = "fighter"
	config.CharacterTemplate.HitPoints = 10

	config.Messages.Victory = "You step into daylight. The keep is behind you."
	config.Messages.GaveUp = "You sit down in the dark and wait for the end."
	config.Messages.UnknownVerb = "The narrator considers your words: %q. The world does not change."
	config.Messages.CannotGo = "There is no way %s from here."
	config.Messages.ItemTaken = "You take the %s."
	config.Messages.ItemDropped = "You drop the %s."
	config.Messages.ItemMissing = "There is no %s here."
	config.Messages.EmptyPockets = "You carry nothing."

	return config
}
