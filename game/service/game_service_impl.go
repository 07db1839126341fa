package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dungeonforge/questengine/game/engine"
	"github.com/dungeonforge/questengine/game/session"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	store     *session.Store
	sequencer *session.Sequencer
	scenarios ScenarioManager
	resolver  ResolverFactory
}

// NewGameService creates a game service using the scripted resolver
func NewGameService(store *session.Store, sequencer *session.Sequencer, scenarios ScenarioManager) GameService {
	return NewGameServiceWithResolver(store, sequencer, scenarios, func(config *engine.ScenarioConfig) engine.Resolver {
		return engine.NewScriptedResolver(config)
	})
}

// NewGameServiceWithResolver creates a game service with a custom
// resolution collaborator factory.
func NewGameServiceWithResolver(store *session.Store, sequencer *session.Sequencer, scenarios ScenarioManager, resolver ResolverFactory) GameService {
	return &gameServiceImpl{
		store:     store,
		sequencer: sequencer,
		scenarios: scenarios,
		resolver:  resolver,
	}
}

// CreateGame builds the initial state for a scenario and allocates a session
func (s *gameServiceImpl) CreateGame(ctx context.Context, scenarioName string) (*GameInfo, error) {
	config, err := s.scenarioFor(scenarioName)
	if err != nil {
		// Provide helpful error message with available options
		available, listErr := s.scenarios.ListScenarios()
		if listErr == nil && len(available) > 0 {
			var ids []string
			for _, info := range available {
				ids = append(ids, info.ScenarioID)
			}
			return nil, fmt.Errorf("scenario '%s' not found. Available scenarios: %v", scenarioName, ids)
		}
		return nil, fmt.Errorf("failed to load scenario %s: %w", scenarioName, err)
	}

	state := engine.InitGameStateFromConfig(config)
	// Keep the identifier the game was created with so later loads resolve
	// the same scenario file; display names are not loadable. The built-in
	// default has no file and keeps its name.
	if scenarioName != "" {
		state.Scenario = scenarioName
	}

	snap, err := s.store.Create(state)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return infoOf(snap), nil
}

// GetGame returns the latest committed snapshot of a game
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	snap, err := s.store.Get(gameID)
	if err != nil {
		return nil, err
	}
	return infoOf(snap), nil
}

// ListGames returns all live games
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	snaps := s.store.List()
	result := make([]*GameInfo, 0, len(snaps))
	for _, snap := range snaps {
		result = append(result, infoOf(snap))
	}
	return result, nil
}

// DeleteGame removes a game session
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	return s.store.Remove(gameID)
}

// SubmitAction serializes, validates, resolves, and commits one action.
// Exactly one history append and turn increment happen per successful call;
// every failure path leaves the session untouched.
func (s *gameServiceImpl) SubmitAction(ctx context.Context, gameID string, payload engine.ActionPayload) (*ActionResult, error) {
	slot, err := s.sequencer.Acquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	snap, err := s.store.Get(gameID)
	if err != nil {
		return nil, err
	}
	if snap.Status != engine.StatusActive {
		return nil, ErrTerminalSession
	}

	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	if payload.SubmittedAt.IsZero() {
		payload.SubmittedAt = time.Now()
	}

	config, err := s.scenarioFor(snap.State.Scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s for game %s: %w", snap.State.Scenario, gameID, err)
	}

	// The snapshot state is a private deep copy, so the resolver gets an
	// exclusively-held working copy and never touches the store's copy.
	newState, outcome, err := s.resolver(config).Resolve(ctx, snap.State, payload)
	if err != nil {
		return nil, &ResolutionError{Err: err}
	}

	record := engine.TurnRecord{Payload: payload, Outcome: *outcome}
	committed, err := s.store.Commit(slot, newState, record)
	if err != nil {
		if errors.Is(err, session.ErrConflict) {
			// Slot discipline was respected above, so this marks a bug.
			log.Printf("ALERT: commit conflict with held slot for game %s", gameID)
			return nil, ErrInvariantViolation
		}
		if errors.Is(err, session.ErrTerminal) {
			return nil, ErrTerminalSession
		}
		return nil, fmt.Errorf("failed to commit action: %w", err)
	}

	return &ActionResult{Game: infoOf(committed), Outcome: *outcome}, nil
}

// GetHistory returns paginated turn history
func (s *gameServiceImpl) GetHistory(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error) {
	snap, err := s.store.Get(gameID)
	if err != nil {
		return nil, err
	}

	history := snap.History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryLimit {
		opts.Limit = engine.MaxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var turns []engine.TurnRecord
	if opts.Order == "desc" {
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = history[start:end]
	}
	if turns == nil {
		turns = []engine.TurnRecord{}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// SweepExpired transitions idle active sessions to expired. Each transition
// happens under the session's slot so a sweep never races an in-flight
// action.
func (s *gameServiceImpl) SweepExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error) {
	swept := 0

	for _, snap := range s.store.List() {
		if snap.Status != engine.StatusActive {
			continue
		}
		if now.Sub(snap.LastActionAt) <= idleTimeout {
			continue
		}

		slot, err := s.sequencer.Acquire(ctx, snap.ID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrBusy) {
				// Removed since we listed, or an action is in flight. A busy
				// session is not idle; move on to the rest.
				continue
			}
			return swept, fmt.Errorf("failed to acquire slot for sweep: %w", err)
		}

		// Re-check under the slot: an action may have landed while we waited
		fresh, err := s.store.Get(snap.ID)
		if err == nil && fresh.Status == engine.StatusActive && now.Sub(fresh.LastActionAt) > idleTimeout {
			if _, err := s.store.Expire(slot); err == nil {
				swept++
			}
		}
		slot.Release()
	}

	return swept, nil
}

// ListScenarios returns available scenarios
func (s *gameServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario configuration
func (s *gameServiceImpl) LoadScenario(ctx context.Context, name string) (*engine.ScenarioConfig, error) {
	return s.scenarios.LoadScenario(name)
}

// SaveScenario saves a scenario configuration
func (s *gameServiceImpl) SaveScenario(ctx context.Context, name string, config *engine.ScenarioConfig) error {
	return s.scenarios.SaveScenario(name, config)
}

// scenarioFor resolves a scenario name to its configuration, falling back
// to the default scenario for an empty name or the default's own name.
func (s *gameServiceImpl) scenarioFor(name string) (*engine.ScenarioConfig, error) {
	if name == "" {
		return s.scenarios.GetDefault(), nil
	}
	config, err := s.scenarios.LoadScenario(name)
	if err != nil {
		if def := s.scenarios.GetDefault(); def != nil && def.Name == name {
			return def, nil
		}
		return nil, err
	}
	return config, nil
}

// validatePayload applies the static rules checked before resolution
func validatePayload(payload engine.ActionPayload) error {
	if strings.TrimSpace(payload.Text) == "" {
		return &ValidationError{Reason: "action text is empty"}
	}
	if len(payload.Text) > engine.MaxActionBytes {
		return &ValidationError{Reason: fmt.Sprintf("action text exceeds %d bytes", engine.MaxActionBytes)}
	}
	return nil
}
