// Package store provides cart.Store implementations.
package store

import (
	"sync"

	"github.com/warp/cart-engine/cart"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds cart snapshots in process memory, keyed by session key.
// Safe for concurrent use by multiple carts.
type Memory struct {
	mu         sync.RWMutex
	items      map[string][]cart.Item
	conditions map[string][]cart.Condition
}

func NewMemory() *Memory {
	return &Memory{
		items:      make(map[string][]cart.Item),
		conditions: make(map[string][]cart.Condition),
	}
}

func (m *Memory) LoadItems(key string) ([]cart.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]cart.Item, len(m.items[key]))
	copy(out, m.items[key])
	return out, nil
}

func (m *Memory) SaveItems(key string, items []cart.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]cart.Item, len(items))
	copy(snapshot, items)
	m.items[key] = snapshot
	return nil
}

func (m *Memory) LoadConditions(key string) ([]cart.Condition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]cart.Condition, len(m.conditions[key]))
	copy(out, m.conditions[key])
	return out, nil
}

func (m *Memory) SaveConditions(key string, conds []cart.Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]cart.Condition, len(conds))
	copy(snapshot, conds)
	m.conditions[key] = snapshot
	return nil
}
