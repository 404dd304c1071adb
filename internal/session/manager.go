package session

import (
	"errors"
	"sync"

	"backend-rucktracker/internal/telemetry"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager is the registry of live session engines, keyed by session ID.
// Ended sessions are removed once their finalized result has been handed
// off.
type Manager struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	cfg     telemetry.Thresholds
	logf    Logger
}

func NewManager(cfg telemetry.Thresholds, logf Logger) *Manager {
	return &Manager{
		engines: map[string]*Engine{},
		cfg:     cfg.Normalize(),
		logf:    logf,
	}
}

// Start creates a tracker plus engine for a new session. notify receives
// lifecycle results for fan-out.
func (m *Manager) Start(id, userID string, userWeightKg, ruckWeightKg float64, notify func(Result)) *Engine {
	tracker := NewTracker(id, userID, m.cfg, userWeightKg, ruckWeightKg, m.logf)
	engine := NewEngine(tracker, notify)

	m.mu.Lock()
	m.engines[id] = engine
	m.mu.Unlock()
	return engine
}

// Get returns the live engine for a session.
func (m *Manager) Get(id string) (*Engine, error) {
	m.mu.RLock()
	engine, ok := m.engines[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return engine, nil
}

// Remove drops an ended session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.engines, id)
	m.mu.Unlock()
}

// Live reports how many sessions are currently registered.
func (m *Manager) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.engines)
}
