package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategorySnapshot is the point-in-time copy of a Category embedded in a
// listing. It is frozen at write time: editing the category later does not
// touch listings that already carry it.
type CategorySnapshot struct {
	ID              uuid.UUID `json:"id"`
	Label           string    `json:"label"`
	Icon            string    `json:"icon"`
	BackgroundColor string    `json:"backgroundColor"`
}

// SellerSnapshot is the point-in-time copy of the user who submitted the
// listing, including their listing count as computed at write time.
type SellerSnapshot struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Image        string    `json:"image"`
	ListingCount int64     `json:"listingCount"`
}

// Location is an optional latitude/longitude pair. On the wire it arrives as a
// string-serialized JSON object and is parsed before assembly.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImageRef names a stored image by base file name. The `_full.jpg` and
// `_thumb.jpg` variants are derived from it when building URLs.
type ImageRef struct {
	FileName string `json:"fileName"`
}

// ImageRefs is the ordered image list, stored as a json column. Order is
// preserve-on-write; duplicates are allowed.
type ImageRefs []ImageRef

// Scan implements sql.Scanner for reading from DB (json column).
func (r *ImageRefs) Scan(value interface{}) error {
	return scanJSON(value, r)
}

// Value implements driver.Valuer for writing to DB.
func (r ImageRefs) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

func (s *CategorySnapshot) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func (s CategorySnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SellerSnapshot) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func (s SellerSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (l *Location) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func (l *Location) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported type for json column")
	}
}

// Listing is the persisted entity. Category and AddedBy are embedded frozen
// snapshots, never live references; AddedByID is the queryable copy of
// AddedBy.ID that the per-seller count query keys on.
type Listing struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string           `gorm:"column:title;not null" json:"title"`
	Description string           `gorm:"column:description" json:"description"`
	Price       float64          `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	Category    CategorySnapshot `gorm:"column:category;type:json" json:"category"`
	AddedByID   uuid.UUID        `gorm:"column:added_by_id;type:uuid;index;not null" json:"-"`
	AddedBy     SellerSnapshot   `gorm:"column:added_by;type:json" json:"addedBy"`
	Images      ImageRefs        `gorm:"column:images;type:json" json:"images"`
	Location    *Location        `gorm:"column:location;type:json" json:"location,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at" json:"updatedAt"`
}

func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
