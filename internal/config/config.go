package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort   string // Application port
	DataDir   string // Directory holding the store file
	JWTSecret string // Session token signing secret
	RedisAddr string // Redis server address
	RedisPass string // Redis password
	RedisDB   int    // Redis database number
	IsProd    bool   // Is production environment
}

// getenv reads an environment variable with a fallback default
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v // Use the configured value
	}
	return fallback // Fall back to the default
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:   getenv("APP_PORT", "5000"),             // Application port
		DataDir:   getenv("DATA_DIR", "data"),             // Store file directory
		JWTSecret: os.Getenv("JWT_SECRET"),                // Session token signing secret
		RedisAddr: getenv("REDIS_ADDR", "127.0.0.1:6379"), // Redis server address
		RedisPass: os.Getenv("REDIS_PASS"),                // Redis password
		RedisDB:   redisDB,                                // Redis database number
		IsProd:    os.Getenv("IS_PROD") == "true",         // Is production environment
	}
}
