package catalog

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/productbird/connector/internal/db/models"
)

// MemoryStore provides an in-memory implementation of the catalog Store.
// It records commit counts per item so tests can assert side effects.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[uint]models.Item
	commits map[uint]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   make(map[uint]models.Item),
		commits: make(map[uint]int),
	}
}

// AddItem seeds an item into the store.
func (m *MemoryStore) AddItem(id uint, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = models.Item{Model: gorm.Model{ID: id}, Name: name}
}

// GetItem retrieves a catalog item by id.
func (m *MemoryStore) GetItem(_ context.Context, id uint) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// CommitDescription writes html as the item's live description.
func (m *MemoryStore) CommitDescription(_ context.Context, id uint, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return ErrItemNotFound
	}
	item.Description = html
	m.items[id] = item
	m.commits[id]++
	return nil
}

// Description returns the current live description for an item.
func (m *MemoryStore) Description(id uint) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id].Description
}

// CommitCount returns how many times an item's description was committed.
func (m *MemoryStore) CommitCount(id uint) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits[id]
}
