package models

import (
	"gorm.io/gorm"
)

// Item is a catalog entry eligible for generated content. The description
// fields mirror what the generation payload sends to the service.
type Item struct {
	gorm.Model
	Name             string `json:"name" gorm:"not null;index"`
	SKU              string `json:"sku" gorm:"index"`
	Brand            string `json:"brand,omitempty"`
	Categories       string `json:"categories,omitempty"`
	Description      string `json:"description,omitempty" gorm:"type:text"`
	ShortDescription string `json:"short_description,omitempty" gorm:"type:text"`
}
