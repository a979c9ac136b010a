package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

type Config struct {
	HTTPPort string

	APIBaseURL string
	APIHost    string
	APIScheme  string
	InitData   string

	PersistBackend string
	CartFileDir    string
	SQLitePath     string
	RedisAddr      string
	RedisPassword  string
	MongoURI       string
	MongoDBName    string

	SyncDebounce    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Currency string
}

// Load reads the process environment. A .env file in the working directory
// is applied first when present.
func Load() (*Config, error) {
	// .env file is optional
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8081"),
		APIBaseURL:     getEnv("API_BASE_URL", ""),
		APIHost:        getEnv("API_HOST", ""),
		APIScheme:      getEnv("API_SCHEME", "https"),
		InitData:       getEnv("TELEGRAM_INIT_DATA", ""),
		PersistBackend: getEnv("PERSIST_BACKEND", BackendFile),
		CartFileDir:    getEnv("CART_FILE_DIR", "./data"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/storefront.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),
		Currency:       getEnv("CURRENCY", "ARS"),
	}

	var err error
	if cfg.SyncDebounce, err = getDuration("SYNC_DEBOUNCE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	switch cfg.PersistBackend {
	case BackendFile, BackendRedis, BackendMongo, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown PERSIST_BACKEND %q", cfg.PersistBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
