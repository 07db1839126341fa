package engine

import "time"

// Status represents the lifecycle state of a game session
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"

	// Validation constants
	MaxActionBytes  = 2048
	MinRooms        = 1
	MaxRooms        = 200
	MaxHistoryLimit = 100
)

// Character represents a player or NPC inside the game world
type Character struct {
	Name      string `json:"name"`
	Class     string `json:"class,omitempty"`
	HitPoints int    `json:"hit_points"`
	MaxHP     int    `json:"max_hp"`
}

// Room represents a single location in the scenario's world graph
type Room struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits,omitempty"` // direction -> room ID
	Items       []string          `json:"items,omitempty"`
}

// GameState represents the complete, self-contained state of one game.
// It must remain serializable and free of external references so it can be
// copied for snapshots and written to transcripts.
type GameState struct {
	Scenario    string            `json:"scenario"`
	Narration   string            `json:"narration"`
	CurrentRoom string            `json:"current_room"`
	Rooms       map[string]*Room  `json:"rooms"`
	Characters  []Character       `json:"characters"`
	Inventory   []string          `json:"inventory"`
	Flags       map[string]bool   `json:"flags,omitempty"`
	TurnCounter int               `json:"turn_counter"`
}

// ActionPayload is a caller-submitted action. It is not stored on its own;
// only its effect is recorded in the session history.
type ActionPayload struct {
	Text        string    `json:"text"`
	Actor       string    `json:"actor,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Outcome describes the result of resolving one action
type Outcome struct {
	Narrative string `json:"narrative"`
	Terminal  bool   `json:"terminal"`
	Reason    string `json:"reason,omitempty"` // e.g. "victory", "gave_up"
}

// TurnRecord is one committed entry in a session's history
type TurnRecord struct {
	Turn      int           `json:"turn"`
	Payload   ActionPayload `json:"payload"`
	Outcome   Outcome       `json:"outcome"`
	AppliedAt time.Time     `json:"applied_at"`
}

// Clone returns a deep copy of the game state. Snapshots handed to readers
// and states handed to resolvers are always clones so the committed copy is
// never mutated in place.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	c := &GameState{
		Scenario:    s.Scenario,
		Narration:   s.Narration,
		CurrentRoom: s.CurrentRoom,
		TurnCounter: s.TurnCounter,
	}

	if s.Rooms != nil {
		c.Rooms = make(map[string]*Room, len(s.Rooms))
		for id, room := range s.Rooms {
			r := &Room{
				ID:          room.ID,
				Name:        room.Name,
				Description: room.Description,
			}
			if room.Exits != nil {
				r.Exits = make(map[string]string, len(room.Exits))
				for dir, target := range room.Exits {
					r.Exits[dir] = target
				}
			}
			if room.Items != nil {
				r.Items = append([]string(nil), room.Items...)
			}
			c.Rooms[id] = r
		}
	}

	if s.Characters != nil {
		c.Characters = append([]Character(nil), s.Characters...)
	}
	if s.Inventory != nil {
		c.Inventory = append([]string(nil), s.Inventory...)
	}
	if s.Flags != nil {
		c.Flags = make(map[string]bool, len(s.Flags))
		for k, v := range s.Flags {
			c.Flags[k] = v
		}
	}

	return c
}

// Room returns the room the player currently occupies, or nil if the state
// is malformed.
func (s *GameState) Room() *Room {
	if s == nil || s.Rooms == nil {
		return nil
	}
	return s.Rooms[s.CurrentRoom]
}
