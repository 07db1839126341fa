package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dungeonforge/questengine/game/engine"
)

var (
	// ErrTerminalSession is returned when an action targets a session that
	// has already completed or expired.
	ErrTerminalSession = errors.New("session has ended")

	// ErrInvariantViolation indicates the turn-slot discipline was breached.
	// It is never expected in correct operation and marks a bug.
	ErrInvariantViolation = errors.New("internal invariant violation: commit without slot")
)

// ValidationError reports a malformed action payload
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action: %s", e.Reason)
}

// ResolutionError carries a resolution collaborator's failure. The
// underlying error is preserved verbatim and reachable through Unwrap.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string { return fmt.Sprintf("resolution failed: %v", e.Err) }
func (e *ResolutionError) Unwrap() error { return e.Err }

// GameService defines all game-related operations
type GameService interface {
	// Lifecycle
	CreateGame(ctx context.Context, scenarioName string) (*GameInfo, error)
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
	DeleteGame(ctx context.Context, gameID string) error
	SweepExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error)

	// Play
	SubmitAction(ctx context.Context, gameID string, payload engine.ActionPayload) (*ActionResult, error)
	GetHistory(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*engine.ScenarioConfig, error)
	SaveScenario(ctx context.Context, name string, config *engine.ScenarioConfig) error
}

// ScenarioManager handles scenario configuration loading
type ScenarioManager interface {
	LoadScenario(name string) (*engine.ScenarioConfig, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *engine.ScenarioConfig
	SaveScenario(name string, config *engine.ScenarioConfig) error
}

// ResolverFactory builds the resolution collaborator for a scenario. The
// default factory returns the scripted resolver; alternative strategies can
// be injected without touching the engine core.
type ResolverFactory func(config *engine.ScenarioConfig) engine.Resolver
