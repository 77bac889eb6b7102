package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/Daviipontes/Dev-Web/pkg/models"
)

// MemoryState keeps carts in process memory. Carts do not survive a restart.
type MemoryState struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem
}

func NewMemoryState() *MemoryState {
	return &MemoryState{carts: make(map[string][]models.CartItem)}
}

func (m *MemoryState) Load(_ context.Context, sessionID string) ([]models.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := slices.Clone(m.carts[sessionID])
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

func (m *MemoryState) Save(_ context.Context, sessionID string, items []models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(items) == 0 {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = slices.Clone(items)
	return nil
}
