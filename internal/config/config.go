package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env           string
	Port          string
	DatabaseURL   string
	RedisURL      string
	UploadDir     string // temporary storage for raw multipart uploads
	AssetsDir     string // durable storage for normalized images, served at /assets
	AssetsBaseURL string // public prefix prepended to image file names in responses
	MaxImageCount int    // maximum file parts accepted per request
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "9000"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	maxImages := viper.GetInt("MAX_IMAGE_COUNT")
	if maxImages <= 0 {
		maxImages = 10
	}

	uploadDir := viper.GetString("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	assetsDir := viper.GetString("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "public/assets"
	}

	return &Config{
		Env:           env,
		Port:          port,
		DatabaseURL:   dbURL,
		RedisURL:      viper.GetString("REDIS_URL"),
		UploadDir:     uploadDir,
		AssetsDir:     assetsDir,
		AssetsBaseURL: assetsBaseURL(viper.GetString("ASSETS_BASE_URL"), port),
		MaxImageCount: maxImages,
	}, nil
}

func assetsBaseURL(s, port string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "http://localhost:" + port + "/assets/"
	}
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}
