// Command analyze prints quick, human-readable heuristics about scenario
// files in the project's scenarios directory. It summarizes the room graph,
// item placement, shortest path from start to goal, and highlights dead ends,
// one-way passages, and rooms unreachable from the start.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AnalysisScenario is a light struct for reading scenario files used by analysis.
type AnalysisScenario struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StartRoom   string            `json:"start_room"`
	GoalRoom    string            `json:"goal_room"`
	Rooms       []AnalysisRoom    `json:"rooms"`
	Messages    map[string]string `json:"messages"`
}

// AnalysisRoom is one room entry in the scenario JSON.
type AnalysisRoom struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Exits map[string]string `json:"exits"`
	Items []string          `json:"items"`
}

func main() {
	scenarioDir := "scenarios"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(scenarioDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", scenarioDir)
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeScenario(file)
	}
}

func analyzeScenario(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var scenario AnalysisScenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	rooms := make(map[string]AnalysisRoom, len(scenario.Rooms))
	itemCount := 0
	exitCount := 0
	for _, room := range scenario.Rooms {
		rooms[room.ID] = room
		itemCount += len(room.Items)
		exitCount += len(room.Exits)
	}

	fmt.Printf("Name: %s\n", scenario.Name)
	fmt.Printf("Rooms: %d\n", len(scenario.Rooms))
	fmt.Printf("Exits: %d\n", exitCount)
	fmt.Printf("Items placed: %d\n", itemCount)
	fmt.Printf("Start Room: %s\n", scenario.StartRoom)
	if scenario.GoalRoom != "" {
		fmt.Printf("Goal Room: %s\n", scenario.GoalRoom)
	} else {
		fmt.Printf("Goal Room: none (open-ended)\n")
	}

	// Dead ends: rooms with no exits at all
	deadEnds := []string{}
	for _, room := range scenario.Rooms {
		if len(room.Exits) == 0 {
			deadEnds = append(deadEnds, room.ID)
		}
	}
	if len(deadEnds) > 0 {
		fmt.Printf("⚠️  %d dead-end rooms (no exits): %v\n", len(deadEnds), deadEnds)
	}

	// One-way passages: an exit with no exit leading back
	oneWay := 0
	for _, room := range scenario.Rooms {
		for _, target := range room.Exits {
			back := false
			if targetRoom, ok := rooms[target]; ok {
				for _, ret := range targetRoom.Exits {
					if ret == room.ID {
						back = true
						break
					}
				}
			}
			if !back {
				oneWay++
				fmt.Printf("   One-way passage: %s -> %s\n", room.ID, target)
			}
		}
	}
	if oneWay == 0 {
		fmt.Printf("✅ All passages are two-way\n")
	}

	// BFS from the start room: depth per room, unreachable rooms
	depths := map[string]int{scenario.StartRoom: 0}
	queue := []string{scenario.StartRoom}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		room, ok := rooms[current]
		if !ok {
			continue
		}
		for _, next := range room.Exits {
			if _, seen := depths[next]; !seen {
				depths[next] = depths[current] + 1
				queue = append(queue, next)
			}
		}
	}

	unreachable := []string{}
	for _, room := range scenario.Rooms {
		if _, ok := depths[room.ID]; !ok {
			unreachable = append(unreachable, room.ID)
		}
	}
	if len(unreachable) > 0 {
		fmt.Printf("⚠️  WARNING: %d rooms unreachable from start: %v\n", len(unreachable), unreachable)
	} else {
		fmt.Printf("✅ All rooms reachable from the start room\n")
	}

	if scenario.GoalRoom != "" {
		if depth, ok := depths[scenario.GoalRoom]; ok {
			fmt.Printf("✅ Shortest path to goal: %d moves\n", depth)
		} else {
			fmt.Printf("⚠️  CRITICAL: goal room %s is unreachable from the start!\n", scenario.GoalRoom)
		}
	}
}
