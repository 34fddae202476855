package app

import (
	listsvc "swapshop-backend/internal/application/listings"
	"swapshop-backend/internal/config"
	"swapshop-backend/internal/infrastructure/audit"
	"swapshop-backend/internal/infrastructure/cache"
	"swapshop-backend/internal/infrastructure/database"
	listhandler "swapshop-backend/internal/interfaces/handlers/listings"
	"swapshop-backend/internal/middleware"
	"swapshop-backend/internal/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. DB and Redis may come back nil when not configured (tests).
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
		BodyLimit:             25 * 1024 * 1024,
	})

	app.Use(middleware.CORS())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// Normalized images are public, served straight off disk.
	app.Static("/assets", cfg.AssetsDir)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		if err := database.Seed(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	if db != nil {
		auditStore := &audit.Store{DB: db}
		pl := pipeline.New(
			&pipeline.UploadStage{Dir: cfg.UploadDir, MaxCount: cfg.MaxImageCount, Audit: auditStore},
			pipeline.NewValidateStage(),
			&pipeline.TransformStage{UploadDir: cfg.UploadDir, AssetsDir: cfg.AssetsDir},
		)
		svc := &listsvc.Service{
			DB:    db,
			Cache: cache.NewListingCache(rdb),
			Audit: auditStore,
		}
		h := &listhandler.Handlers{Service: svc, Pipeline: pl, AssetsBaseURL: cfg.AssetsBaseURL}

		g := app.Group("/api/listings")
		g.Get("/", h.GetAllListings)
		g.Get("/:id", h.GetListing)
		g.Post("/", h.CreateListing)
		g.Put("/:id", h.UpdateListing)
		g.Delete("/:id", h.DeleteListing)
	}

	return app, db, rdb, nil
}
