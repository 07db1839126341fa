// Command loadtest hammers a running quest engine server with concurrent
// actions and verifies the turn ordering guarantees hold under load: every
// committed action gets a unique turn number, the final turn number equals
// the number of accepted actions, and history turn numbers are contiguous.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type GameState struct {
	Scenario    string `json:"scenario"`
	CurrentRoom string `json:"current_room"`
	TurnCounter int    `json:"turn_counter"`
}

type GameResponse struct {
	ID         string     `json:"id"`
	Scenario   string     `json:"scenario"`
	TurnNumber int        `json:"turn_number"`
	Status     string     `json:"status"`
	State      *GameState `json:"state"`
}

type ActionRequest struct {
	Text  string `json:"text"`
	Actor string `json:"actor,omitempty"`
}

type ActionResponse struct {
	Game    *GameResponse `json:"game"`
	Outcome struct {
		Narrative string `json:"narrative"`
		Terminal  bool   `json:"terminal"`
		Reason    string `json:"reason,omitempty"`
	} `json:"outcome"`
}

type HistoryResponse struct {
	Turns []struct {
		Turn    int `json:"turn"`
		Payload struct {
			Text  string `json:"text"`
			Actor string `json:"actor,omitempty"`
		} `json:"payload"`
	} `json:"turns"`
	TotalTurns int `json:"total_turns"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateGame(scenario string) (*GameResponse, error) {
	var reqBody []byte
	var err error

	if scenario != "" {
		reqBody, err = json.Marshal(map[string]string{"scenario": scenario})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/games", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create game failed: %s - %s", resp.Status, string(body))
	}

	var game GameResponse
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("parse game response: %w", err)
	}

	return &game, nil
}

func (c *Client) GetGame(gameID string) (*GameResponse, error) {
	resp, err := c.client.Get(fmt.Sprintf("%s/api/games/%s", c.baseURL, gameID))
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	defer resp.Body.Close()

	var game GameResponse
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, fmt.Errorf("parse game: %w", err)
	}

	return &game, nil
}

func (c *Client) SubmitAction(gameID, text, actor string) (*ActionResponse, error) {
	body, err := json.Marshal(ActionRequest{Text: text, Actor: actor})
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}

	url := fmt.Sprintf("%s/api/games/%s/actions", c.baseURL, gameID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("submit action: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("action rejected: %s - %s", resp.Status, string(respBody))
	}

	var result ActionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse action response: %w", err)
	}

	return &result, nil
}

func (c *Client) GetHistory(gameID string, limit int) (*HistoryResponse, error) {
	url := fmt.Sprintf("%s/api/games/%s/history?limit=%d&order=asc", c.baseURL, gameID, limit)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer resp.Body.Close()

	var history HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	return &history, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Quest engine server URL")
	scenario := flag.String("scenario", "", "Scenario name (empty = server default)")
	games := flag.Int("games", 4, "Number of concurrent games")
	workersPerGame := flag.Int("workers", 8, "Concurrent workers per game")
	actionsPerWorker := flag.Int("actions", 25, "Actions each worker submits")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to quest engine at %s", *serverURL)
	client := NewClient(*serverURL)

	expectedPerGame := *workersPerGame * *actionsPerWorker
	log.Printf("Plan: %d games x %d workers x %d actions = %d actions per game",
		*games, *workersPerGame, *actionsPerWorker, expectedPerGame)

	var failed atomic.Bool
	var wg sync.WaitGroup

	start := time.Now()
	for g := 0; g < *games; g++ {
		wg.Add(1)
		go func(gameNum int) {
			defer wg.Done()
			if !runGame(client, gameNum, *scenario, *workersPerGame, *actionsPerWorker, *verbose) {
				failed.Store(true)
			}
		}(g)
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := *games * expectedPerGame
	log.Printf("Submitted %d actions across %d games in %s (%.0f actions/s)",
		total, *games, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())

	if failed.Load() {
		log.Printf("❌ Ordering guarantees violated")
		os.Exit(1)
	}
	log.Printf("✅ All ordering guarantees held")
}

// runGame creates one game, blasts it with concurrent workers, then checks
// the final turn number and history contiguity. Returns false on any
// guarantee violation.
func runGame(client *Client, gameNum int, scenario string, workers, actionsPerWorker int, verbose bool) bool {
	game, err := client.CreateGame(scenario)
	if err != nil {
		log.Printf("[game %d] Failed to create game: %v", gameNum, err)
		return false
	}
	log.Printf("[game %d] Created %s (scenario: %s)", gameNum, game.ID, game.Scenario)

	var accepted atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			actor := fmt.Sprintf("worker-%d-%d", gameNum, workerNum)
			for i := 0; i < actionsPerWorker; i++ {
				text := fmt.Sprintf("say probe %s turn %d", actor, i)
				result, err := client.SubmitAction(game.ID, text, actor)
				if err != nil {
					log.Printf("[game %d] %s action %d failed: %v", gameNum, actor, i, err)
					continue
				}
				accepted.Add(1)
				if verbose {
					log.Printf("[game %d] %s -> turn %d", gameNum, actor, result.Game.TurnNumber)
				}
			}
		}(w)
	}
	wg.Wait()

	// Verify the final turn number matches the accepted action count
	final, err := client.GetGame(game.ID)
	if err != nil {
		log.Printf("[game %d] Failed to fetch final state: %v", gameNum, err)
		return false
	}

	want := int(accepted.Load())
	ok := true
	if final.TurnNumber != want {
		log.Printf("[game %d] ❌ Turn number %d, expected %d", gameNum, final.TurnNumber, want)
		ok = false
	}

	// Verify history turn numbers are contiguous from 1
	history, err := client.GetHistory(game.ID, 100)
	if err != nil {
		log.Printf("[game %d] Failed to fetch history: %v", gameNum, err)
		return false
	}
	if history.TotalTurns != want {
		log.Printf("[game %d] ❌ History total %d, expected %d", gameNum, history.TotalTurns, want)
		ok = false
	}
	for i, turn := range history.Turns {
		if turn.Turn != i+1 {
			log.Printf("[game %d] ❌ History gap: position %d has turn %d", gameNum, i, turn.Turn)
			ok = false
			break
		}
	}

	if ok {
		log.Printf("[game %d] ✅ %d actions, final turn %d, history contiguous",
			gameNum, want, final.TurnNumber)
	}
	return ok
}
