package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the SDK and the bundled tools read from the
// environment. A .env file in the working directory is honored when present.
type Config struct {
	// BaseURL is the root of the TomatoMall API, e.g. http://localhost:8080.
	BaseURL string
	// RequestTimeout bounds every HTTP exchange made by the transport.
	RequestTimeout time.Duration

	// Mock backend settings (cmd/mockmall).
	ServerAddr string
	DBPath     string
	JWTSecret  string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		BaseURL:    getEnv("TOMATOMALL_BASE_URL", "http://localhost:8080"),
		ServerAddr: getEnv("TOMATOMALL_ADDR", ":8080"),
		DBPath:     getEnv("TOMATOMALL_DB_PATH", "file::memory:?cache=shared"),
		JWTSecret:  getEnv("TOMATOMALL_JWT_SECRET", "tomatomall-dev-secret"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}

	timeoutSec := getEnvAsInt("TOMATOMALL_TIMEOUT_SEC", 10)
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("TOMATOMALL_TIMEOUT_SEC must be > 0")
	}
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("TOMATOMALL_BASE_URL must not be empty")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
