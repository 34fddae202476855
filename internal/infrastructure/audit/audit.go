// Package audit persists the upload audit trail: one row per file written to
// temporary storage, flipped to attached once a listing references it. The
// external reconciliation sweep reads unattached rows to find orphaned files.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"swapshop-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

// Record writes an audit row for a freshly written temp file. It never fails
// the request: audit errors are logged and swallowed.
func (s *Store) Record(ctx context.Context, baseName, storedAs string, size int64, contentType string) {
	if s == nil || s.DB == nil {
		return
	}
	details, _ := json.Marshal(map[string]interface{}{
		"storedAs":    storedAs,
		"size":        size,
		"contentType": contentType,
	})
	rec := domain.UploadRecord{
		FileName:  baseName,
		WrittenAt: time.Now(),
		Details:   datatypes.JSON(details),
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		log.Error().Err(err).Str("file", baseName).Msg("audit: failed to record upload")
	}
}

// MarkAttached flips the audit rows for the given base names once a listing
// references them. Best effort, same contract as Record.
func (s *Store) MarkAttached(ctx context.Context, baseNames []string, listingID uuid.UUID) {
	if s == nil || s.DB == nil || len(baseNames) == 0 {
		return
	}
	err := s.DB.WithContext(ctx).
		Model(&domain.UploadRecord{}).
		Where("file_name IN ?", baseNames).
		Updates(map[string]interface{}{"attached": true, "listing_id": listingID}).Error
	if err != nil {
		log.Error().Err(err).Str("listing_id", listingID.String()).Msg("audit: failed to mark uploads attached")
	}
}
