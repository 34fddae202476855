package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is owned by an external collaborator; this service only reads it
// and copies a subset of fields into listing snapshots.
type Category struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Label           string    `gorm:"column:label;not null" json:"label"`
	Icon            string    `gorm:"column:icon" json:"icon"`
	BackgroundColor string    `gorm:"column:background_color" json:"backgroundColor"`
	Color           string    `gorm:"column:color" json:"color"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Snapshot returns the frozen copy embedded into listings.
func (c *Category) Snapshot() CategorySnapshot {
	return CategorySnapshot{
		ID:              c.ID,
		Label:           c.Label,
		Icon:            c.Icon,
		BackgroundColor: c.BackgroundColor,
	}
}
