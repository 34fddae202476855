package database

import (
	"swapshop-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists") when
// running behind a connection pooler (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models this service owns or reads.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Listing{},
		&domain.Category{},
		&domain.User{},
		&domain.UploadRecord{},
	)
}

// Seed inserts the default category set and a demo seller when the tables are
// empty, mirroring the prefilled store the original app ships with.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		categories := []domain.Category{
			{Label: "Furniture", Icon: "floor-lamp", BackgroundColor: "#fc5c65", Color: "white"},
			{Label: "Cars", Icon: "car", BackgroundColor: "#fd9644", Color: "white"},
			{Label: "Cameras", Icon: "camera", BackgroundColor: "#fed330", Color: "white"},
			{Label: "Games", Icon: "cards", BackgroundColor: "#26de81", Color: "white"},
			{Label: "Clothing", Icon: "shoe-heel", BackgroundColor: "#2bcbba", Color: "white"},
			{Label: "Sports", Icon: "basketball", BackgroundColor: "#45aaf2", Color: "white"},
			{Label: "Movies & Music", Icon: "headphones", BackgroundColor: "#4b7bec", Color: "white"},
			{Label: "Books", Icon: "book-open-variant", BackgroundColor: "#a55eea", Color: "white"},
			{Label: "Other", Icon: "application", BackgroundColor: "#778ca3", Color: "white"},
		}
		if err := db.Create(&categories).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		demo := domain.User{Name: "Demo Seller", Email: "demo@swapshop.dev"}
		if err := db.Create(&demo).Error; err != nil {
			return err
		}
	}
	return nil
}
