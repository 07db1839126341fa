package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dungeonforge/questengine/game/engine"
	"github.com/dungeonforge/questengine/game/service"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
)

// Manager handles scenario configuration loading and caching
type Manager struct {
	scenarioDir string
	defaultCfg  *engine.ScenarioConfig
	scenarios   map[string]*engine.ScenarioConfig
	mu          sync.RWMutex
}

// NewManager creates a scenario manager rooted at scenarioDir. An empty
// directory name is allowed; the built-in default scenario is always
// available.
func NewManager(scenarioDir string) (*Manager, error) {
	if scenarioDir != "" {
		if _, err := os.Stat(scenarioDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario directory does not exist: %s", scenarioDir)
		}
	}

	return &Manager{
		scenarioDir: scenarioDir,
		defaultCfg:  engine.DefaultScenario(),
		scenarios:   make(map[string]*engine.ScenarioConfig),
	}, nil
}

// GetDefault returns the built-in default scenario
func (m *Manager) GetDefault() *engine.ScenarioConfig {
	return m.defaultCfg
}

// LoadScenario loads a scenario by name
func (m *Manager) LoadScenario(name string) (*engine.ScenarioConfig, error) {
	m.mu.RLock()
	if config, exists := m.scenarios[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	if m.scenarioDir == "" {
		return nil, ErrScenarioNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.scenarios[name]; exists {
		return config, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.scenarioDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var config engine.ScenarioConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := engine.ValidateScenarioConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	m.scenarios[name] = &config
	return &config, nil
}

// ListScenarios returns information about all available scenarios,
// including the built-in default.
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	scenarios := []*service.ScenarioInfo{{
		ScenarioID:  "",
		Name:        m.defaultCfg.Name,
		Description: m.defaultCfg.Description,
		RoomCount:   len(m.defaultCfg.Rooms),
		HasGoal:     m.defaultCfg.GoalRoom != "",
	}}

	if m.scenarioDir == "" {
		return scenarios, nil
	}

	entries, err := os.ReadDir(m.scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		config, err := m.LoadScenario(name)
		if err != nil {
			// Skip unreadable or invalid files; the validate CLI reports them
			continue
		}

		scenarios = append(scenarios, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  name,
			Name:        config.Name,
			Description: config.Description,
			RoomCount:   len(config.Rooms),
			HasGoal:     config.GoalRoom != "",
		})
	}

	return scenarios, nil
}

// SaveScenario validates and writes a scenario to the scenario directory
func (m *Manager) SaveScenario(name string, config *engine.ScenarioConfig) error {
	if m.scenarioDir == "" {
		return fmt.Errorf("no scenario directory configured")
	}
	if err := engine.ValidateScenarioConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.scenarioDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[strings.TrimSuffix(filename, ".json")] = config
	m.mu.Unlock()

	return nil
}
