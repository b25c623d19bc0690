package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	ServerReadTimeout time.Duration
	ServerIdleTimeout time.Duration
	RequestTimeout    time.Duration
	StreamMaxDuration time.Duration

	StorageRoot   string
	PathMaxDepth  int
	MaxUploadSize int64

	CacheDir string
	CacheTTL time.Duration

	LogDir           string
	LogLevel         string
	LogDetailed      bool
	LogCategoriesOff []string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	SearchMaxDepth   int
	SearchMaxResults int
	SearchTimeout    time.Duration

	AllowedMIMETypes []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	storageRoot := getEnv("STORAGE_ROOT", "./data")

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout: getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerIdleTimeout: getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 30*time.Second),
		StreamMaxDuration: getDuration("STREAM_MAX_DURATION", 4*time.Hour),
		StorageRoot:       storageRoot,
		PathMaxDepth:      getInt("PATH_MAX_DEPTH", 32),
		MaxUploadSize:     getInt64("MAX_UPLOAD_SIZE", 1073741824),
		CacheDir:          getEnv("CACHE_DIR", "./state/cache"),
		CacheTTL:          getDuration("CACHE_TTL", 60*time.Second),
		LogDir:            getEnv("LOG_DIR", filepath.Join(storageRoot, "logs")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogDetailed:       getBool("LOG_DETAILED", true),
		LogCategoriesOff:  splitCSV(strings.TrimSpace(os.Getenv("LOG_CATEGORIES_OFF"))),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:        int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:        int32(getInt("DB_MIN_CONNS", 2)),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAccessTTL:      getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL:     getDuration("JWT_REFRESH_TTL", 168*time.Hour),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:      getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:  getInt("AUTH_RATE_LIMIT_RPM", 10),
		SearchMaxDepth:    getInt("SEARCH_MAX_DEPTH", 10),
		SearchMaxResults:  getInt("SEARCH_MAX_RESULTS", 200),
		SearchTimeout:     getDuration("SEARCH_TIMEOUT", 30*time.Second),
		AllowedMIMETypes:  splitCSV(strings.TrimSpace(os.Getenv("ALLOWED_MIME_TYPES"))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.StorageRoot == "" {
		return fmt.Errorf("STORAGE_ROOT cannot be empty")
	}

	if strings.TrimSpace(c.CacheDir) == "" {
		return fmt.Errorf("CACHE_DIR cannot be empty")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
