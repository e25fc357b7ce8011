// Package catalog is the boundary to the live item store (the commerce catalog)
package catalog

import (
	"context"
	"errors"

	"github.com/productbird/connector/internal/db/models"
)

// ErrItemNotFound is returned when the catalog holds no item with the given id
var ErrItemNotFound = errors.New("catalog item not found")

// Store is the live item store the connector reads items from and commits
// generated descriptions to.
type Store interface {
	// GetItem retrieves a catalog item by id
	GetItem(ctx context.Context, id uint) (*models.Item, error)

	// CommitDescription writes html as the item's live description
	CommitDescription(ctx context.Context, id uint, html string) error
}
