package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UploadRecord is the audit trail behind temporary uploads. A row is written
// when the upload stage persists a file and flipped to attached once a listing
// references it. Rows that never flip mark orphaned files; the external
// cleanup sweep consumes them.
type UploadRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FileName  string         `gorm:"column:file_name;index;not null" json:"fileName"`
	Attached  bool           `gorm:"column:attached;index" json:"attached"`
	ListingID *uuid.UUID     `gorm:"column:listing_id;type:uuid" json:"listingId,omitempty"`
	Details   datatypes.JSON `gorm:"column:details;type:json" json:"details"`
	WrittenAt time.Time      `gorm:"column:written_at" json:"writtenAt"`
}

func (UploadRecord) TableName() string {
	return "upload_records"
}
