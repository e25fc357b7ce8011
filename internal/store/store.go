// Package store defines the persistence contract for generation records
package store

import (
	"context"

	"github.com/productbird/connector/internal/db/models"
)

// RecordStore is the persistence contract for per-item generation state.
//
// Get returns nil (no error) for an absent record; absence is equivalent to
// StatusNone. Mutate performs a read-modify-write of one item's record that
// implementations must make effectively atomic, so a webhook and a poll
// arriving in the same window cannot interleave a lost update.
type RecordStore interface {
	// Get retrieves the record for an item, or nil if none exists
	Get(ctx context.Context, itemID uint) (*models.GenerationRecord, error)

	// Exists reports whether a record exists for the item
	Exists(ctx context.Context, itemID uint) (bool, error)

	// Mutate atomically reads, applies fn to, and persists the item's record.
	// A blank record (StatusNone) is passed to fn when none exists yet. The
	// persisted record is returned.
	Mutate(ctx context.Context, itemID uint, fn func(*models.GenerationRecord) error) (*models.GenerationRecord, error)

	// Clear removes all persisted state for the item
	Clear(ctx context.Context, itemID uint) error

	// ListLiveJobs returns records still holding an external job id, paginated
	ListLiveJobs(ctx context.Context, opts *models.ListOptions) ([]models.GenerationRecord, error)
}
