package config

import (
	"os"
	"time"
)

const (
	// Media ingestion
	MediaWorkers      = 4
	MediaWriteTimeout = 5 * time.Second
	MaxMediaBytes     = 10 * 1024 * 1024 // matches the client upload cap

	// WebSocket
	SendBufferSize = 256
)

// Config holds the process settings read from the environment.
type Config struct {
	HTTPAddr  string
	DSN       string
	RedisAddr string
	JWTSecret string
	UploadDir string
}

// Load reads the environment with sensible local-dev defaults. godotenv is
// loaded by main before this runs.
func Load() Config {
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		DSN:       getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=pairlinkdb port=5432 sslmode=disable"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: getenv("JWT_SECRET", "dev-only-secret"),
		UploadDir: getenv("UPLOAD_DIR", "static/uploads"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
