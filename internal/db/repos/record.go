// Package repos provides database repositories for the connector models
package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/store"
)

// RecordRepository handles database operations for generation records
type RecordRepository struct {
	db *gorm.DB
}

var _ store.RecordStore = (*RecordRepository)(nil)

// NewRecordRepository creates a new instance of RecordRepository
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Get retrieves the record for an item, or nil if none exists
func (r *RecordRepository) Get(ctx context.Context, itemID uint) (*models.GenerationRecord, error) {
	var rec models.GenerationRecord
	err := r.db.WithContext(ctx).
		Where(models.GenerationRecord{ItemID: itemID}).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists reports whether a record exists for the item
func (r *RecordRepository) Exists(ctx context.Context, itemID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GenerationRecord{}).
		Where(models.GenerationRecord{ItemID: itemID}).
		Count(&count).Error
	return count > 0, err
}

// Mutate atomically reads, applies fn to, and persists the item's record.
// The row is locked for the duration of the transaction so a webhook and a
// poll for the same item serialize instead of losing an update.
func (r *RecordRepository) Mutate(ctx context.Context, itemID uint, fn func(*models.GenerationRecord) error) (*models.GenerationRecord, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("invalid item id: 0")
	}

	var out models.GenerationRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.GenerationRecord{ItemID: itemID, Status: models.StatusNone, Mode: models.ModeReview}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(models.GenerationRecord{ItemID: itemID}).
			First(&rec).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		rec.ItemID = itemID

		if err := fn(&rec); err != nil {
			return err
		}

		// Save is a full-row write so cleared fields persist as zero values.
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Clear removes all persisted state for the item
func (r *RecordRepository) Clear(ctx context.Context, itemID uint) error {
	return r.db.WithContext(ctx).
		Where(models.GenerationRecord{ItemID: itemID}).
		Delete(&models.GenerationRecord{}).Error
}

// ListLiveJobs returns records still holding an external job id, paginated
func (r *RecordRepository) ListLiveJobs(ctx context.Context, opts *models.ListOptions) ([]models.GenerationRecord, error) {
	var recs []models.GenerationRecord
	query := r.db.WithContext(ctx).
		Where("external_job_id <> ''").
		Where("status IN ?", []models.GenerationStatus{models.StatusQueued, models.StatusRunning}).
		Order("item_id")
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := query.Find(&recs).Error
	return recs, err
}
