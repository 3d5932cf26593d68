package store

import (
	"context"
	"sync"

	"revolution/internal/domain"
)

// Memory is the in-process Store used by tests and local simulation. Values
// are cloned on both paths so callers never share an aggregate with the map.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*domain.GameState
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]*domain.GameState)}
}

func (m *Memory) Load(_ context.Context, code string) (*domain.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}

func (m *Memory) Save(_ context.Context, state *domain.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[state.Code] = state.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
	return nil
}
