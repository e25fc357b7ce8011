package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/productbird/connector/internal/db/models"
)

// Memory provides an in-memory implementation of the RecordStore interface.
// It backs engine tests and single-process deployments without a database.
type Memory struct {
	mu      sync.RWMutex
	records map[uint]models.GenerationRecord
}

var _ RecordStore = (*Memory)(nil)

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[uint]models.GenerationRecord)}
}

// Get retrieves the record for an item, or nil if none exists.
func (m *Memory) Get(_ context.Context, itemID uint) (*models.GenerationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[itemID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Exists reports whether a record exists for the item.
func (m *Memory) Exists(_ context.Context, itemID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[itemID]
	return ok, nil
}

// Mutate atomically reads, applies fn to, and persists the item's record.
func (m *Memory) Mutate(_ context.Context, itemID uint, fn func(*models.GenerationRecord) error) (*models.GenerationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[itemID]
	if !ok {
		rec = models.GenerationRecord{ItemID: itemID, Status: models.StatusNone, Mode: models.ModeReview}
	}

	if err := fn(&rec); err != nil {
		return nil, err
	}
	rec.LastUpdatedAt = time.Now().UTC()

	m.records[itemID] = rec
	out := rec
	return &out, nil
}

// Clear removes all persisted state for the item.
func (m *Memory) Clear(_ context.Context, itemID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, itemID)
	return nil
}

// ListLiveJobs returns records still holding an external job id, paginated.
func (m *Memory) ListLiveJobs(_ context.Context, opts *models.ListOptions) ([]models.GenerationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var live []models.GenerationRecord
	for _, rec := range m.records {
		if rec.LiveJob() {
			live = append(live, rec)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ItemID < live[j].ItemID })

	if opts == nil {
		return live, nil
	}
	if opts.Offset >= len(live) {
		return nil, nil
	}
	live = live[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(live) {
		live = live[:opts.Limit]
	}
	return live, nil
}
