// Command validate provides a small CLI that validates scenario JSON files
// in the ../scenarios directory. It checks:
//   - JSON structure and required fields
//   - Room ID uniqueness and non-empty IDs
//   - Exits pointing at rooms that actually exist
//   - Presence of the start room (and goal room, when set)
//   - Required narration message keys
//   - Connectivity: the goal room is reachable from the start room via exits
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario mirrors the JSON schema for a scenario definition.
type Scenario struct {
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Opening           string            `json:"opening"`
	StartRoom         string            `json:"start_room"`
	GoalRoom          string            `json:"goal_room"`
	Rooms             []Room            `json:"rooms"`
	StartingInventory []string          `json:"starting_inventory"`
	Messages          map[string]string `json:"messages"`
}

// Room mirrors one room entry in the scenario JSON.
type Room struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits"`
	Items       []string          `json:"items"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateScenario loads and validates a single scenario JSON file.
// It performs structural checks, room graph validation, message presence,
// and reachability analysis for the goal room.
func validateScenario(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var scenario Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if strings.TrimSpace(scenario.Name) == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Scenario name is required")
	}

	if strings.TrimSpace(scenario.Opening) == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Opening narration is required")
	}

	// Validate rooms
	if len(scenario.Rooms) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Scenario must define at least 1 room")
	}

	rooms := map[string]Room{}
	itemCount := 0
	exitCount := 0
	for i, room := range scenario.Rooms {
		if strings.TrimSpace(room.ID) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Room %d has an empty ID", i+1))
			continue
		}
		if _, dup := rooms[room.ID]; dup {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Duplicate room ID: %s", room.ID))
			continue
		}
		rooms[room.ID] = room
		itemCount += len(room.Items)
		exitCount += len(room.Exits)
	}

	// Validate exits
	for _, room := range scenario.Rooms {
		for dir, target := range room.Exits {
			if _, ok := rooms[target]; !ok {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Room %s exit '%s' points at unknown room %s", room.ID, dir, target))
			}
		}
	}

	// Validate start and goal rooms
	if scenario.StartRoom == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "start_room is required")
	} else if _, ok := rooms[scenario.StartRoom]; !ok {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("start_room %s does not exist", scenario.StartRoom))
	}

	if scenario.GoalRoom != "" {
		if _, ok := rooms[scenario.GoalRoom]; !ok {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("goal_room %s does not exist", scenario.GoalRoom))
		}
	}

	// Validate messages
	requiredMessages := []string{
		"victory",
		"gave_up",
		"unknown_verb",
		"cannot_go",
		"item_taken",
		"item_dropped",
		"item_missing",
		"empty_pockets",
	}
	for _, msg := range requiredMessages {
		if _, exists := scenario.Messages[msg]; !exists {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Missing required message: %s", msg))
		}
	}

	// Connectivity validation - check the goal room is reachable from the start
	if result.Valid && scenario.GoalRoom != "" {
		reachabilityResult := validateConnectivity(rooms, scenario.StartRoom, scenario.GoalRoom)
		if !reachabilityResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, reachabilityResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", scenario.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Rooms: %d", len(scenario.Rooms)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Exits: %d", exitCount))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Items placed: %d", itemCount))
		if scenario.GoalRoom != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Goal: %s", scenario.GoalRoom))
		} else {
			result.Errors = append(result.Errors, "✓ Goal: none (open-ended scenario)")
		}
	}

	return result
}

// validateConnectivity ensures the goal room is reachable from the start
// room by following exits (breadth-first walk over the room graph).
func validateConnectivity(rooms map[string]Room, start, goal string) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if start == goal {
		result.Errors = append(result.Errors, "✓ Connectivity: start room is the goal room")
		return result
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	reached := false

	for len(queue) > 0 && !reached {
		current := queue[0]
		queue = queue[1:]

		room, ok := rooms[current]
		if !ok {
			continue
		}
		for _, next := range room.Exits {
			if next == goal {
				reached = true
				break
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	if !reached {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: goal room %s unreachable from %s", goal, start))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: goal room %s reachable from %s", goal, start))
	}

	return result
}

// main scans ../scenarios for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	scenarioDir := "../scenarios"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(scenarioDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenario(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
