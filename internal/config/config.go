package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"

	defaultDBConnection = "./data/bookshelf.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
)

type Config struct {
	// Application
	AppName        string
	AppEnv         string
	AppURL         string
	Port           string
	FrontendDomain string
	// ShutdownTimeout bounds graceful shutdown of in-flight requests
	ShutdownTimeout time.Duration

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string

	// Observability (optional)
	SentryDSN string

	// Uploads are staged here before being pushed to storage
	UploadDir      string
	MaxUploadBytes int64

	// Storage: "s3" for any S3-compatible service, "local" for development
	StorageDriver   string
	LocalStorageDir string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
}

func Load() *Config {
	loadDotEnv()

	port := envString("PORT", "5513")

	cfg := &Config{
		// Application
		AppName:         envString("APP_NAME", "Bookshelf"),
		AppEnv:          envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:          envString("APP_URL", "http://localhost:"+port),
		Port:            port,
		FrontendDomain:  envString("FRONTEND_DOMAIN", ""),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Uploads
		UploadDir:      envString("UPLOAD_DIR", "./data/uploads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 30_000_000),

		// Storage
		StorageDriver:   envString("STORAGE_DRIVER", StorageDriverS3),
		LocalStorageDir: envString("LOCAL_STORAGE_DIR", "./data/storage"),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}

	switch cfg.StorageDriver {
	case StorageDriverS3:
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
		cfg.S3AccessKey = envRequired("S3_ACCESS_KEY")
		cfg.S3SecretKey = envRequired("S3_SECRET_KEY")
	case StorageDriverLocal:
		if cfg.IsProduction() {
			slog.Error("production deployment requires STORAGE_DRIVER=s3",
				"hint", "set APP_ENV=development to use the local storage driver")
			os.Exit(1)
		}
	default:
		slog.Error("config unknown storage driver", "driver", cfg.StorageDriver)
		os.Exit(1)
	}

	return cfg
}

// LoadDatabase reads only the settings needed to reach the database.
// Tools such as the migration CLI use it so they do not require secrets or
// storage credentials.
func LoadDatabase() *Config {
	loadDotEnv()

	return &Config{
		AppName:      envString("APP_NAME", "Bookshelf"),
		AppEnv:       envString("APP_ENV", "development"),
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),
		SentryDSN:    envString("SENTRY_DSN", ""),
	}
}

func loadDotEnv() {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
