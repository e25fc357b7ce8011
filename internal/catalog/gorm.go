package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/productbird/connector/internal/db/models"
)

// GormStore is the database-backed implementation of the catalog Store
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a new catalog store backed by the given database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetItem retrieves a catalog item by id
func (s *GormStore) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CommitDescription writes html as the item's live description
func (s *GormStore) CommitDescription(ctx context.Context, id uint, html string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("description", html)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
