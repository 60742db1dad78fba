package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds server settings resolved from the environment.
// Command-line flags take precedence over these values.
type Config struct {
	Port          int
	DBPath        string
	AdminPassword string
	LogLevel      string
	BaseURL       string
	HTTPLog       bool
}

// Load reads config from a .env file (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:          getIntEnv("VOTELY_PORT", 8081),
		DBPath:        getEnv("VOTELY_DB", "votely.db"),
		AdminPassword: getEnv("VOTELY_ADMIN_PASSWORD", ""),
		LogLevel:      getEnv("VOTELY_LOG_LEVEL", "info"),
		BaseURL:       getEnv("VOTELY_BASE_URL", ""),
		HTTPLog:       getBoolEnv("VOTELY_HTTP_LOG", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
