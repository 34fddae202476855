package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is owned by an external collaborator; this service only reads it and
// copies a subset of fields into listing snapshots.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	ProfileImage string    `gorm:"column:profile_image" json:"profileImage"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Snapshot returns the frozen copy embedded into listings. listingCount is
// computed by the caller at write time and never refreshed afterwards.
func (u *User) Snapshot(listingCount int64) SellerSnapshot {
	return SellerSnapshot{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Image:        u.ProfileImage,
		ListingCount: listingCount,
	}
}
