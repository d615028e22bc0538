package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with
// simple defaults suitable for local development.
type Config struct {
	// HTTP server
	ServerAddr string

	// MySQL (authoritative remote record store)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis (persistent snapshot cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Snapshot cache behaviour
	SnapshotVersion string        // version tag; a mismatch invalidates the snapshot
	SnapshotTTL     time.Duration // snapshots at or past this age are invalid
	SnapshotKey     string        // Redis key holding the snapshot blob

	// Discogs-style external catalog service
	CatalogBaseURL  string
	CatalogToken    string
	CatalogUsername string
	CatalogDelay    time.Duration // courtesy delay between page fetches

	// MinIO cover-image archive
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Drop-folder importer; empty disables the watcher
	DropDir string

	// Materializer batch size between context checks
	ViewBatchSize int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration string
// (e.g. "24h", "750ms") or returns a default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("CRATEFM_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "cratefm"),
		DBPassword: getEnv("DB_PASSWORD", "cratefm"),
		DBName:     getEnv("DB_NAME", "cratefm"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SnapshotVersion: getEnv("SNAPSHOT_VERSION", "2.1"),
		SnapshotTTL:     getEnvDuration("SNAPSHOT_TTL", 24*time.Hour),
		SnapshotKey:     getEnv("SNAPSHOT_KEY", "cratefm:snapshot"),

		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", "https://api.discogs.com"),
		CatalogToken:    getEnv("CATALOG_TOKEN", ""),
		CatalogUsername: getEnv("CATALOG_USERNAME", ""),
		CatalogDelay:    getEnvDuration("CATALOG_DELAY", 1100*time.Millisecond),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "cratefm-covers"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		DropDir: getEnv("DROP_DIR", ""),

		ViewBatchSize: getEnvInt("VIEW_BATCH_SIZE", 200),
	}
}
