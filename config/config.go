package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port      string // Service port
	KratosURL string // Kratos internal URL (Frontend API - port 4433)

	RedisAddr     string // Session store address
	RedisPassword string // Session store password
	RedisDB       int    // Session store logical database

	DatabaseURL string // Postgres connection string

	MinioEndpoint      string        // Object storage endpoint (host:port)
	MinioAccessKey     string        // Object storage access key
	MinioSecretKey     string        // Object storage secret key
	MinioUseSSL        bool          // Whether to reach storage over TLS
	MinioBucket        string        // Bucket holding staged and permanent objects
	StoragePublicURL   string        // Public base URL for promoted objects
	UploadURLTTL       time.Duration // Presigned upload URL lifetime

	TokenSecret   string        // Secret for signing session token JWTs
	TokenIssuer   string        // JWT issuer claim
	TokenTTL      time.Duration // Session token cookie lifetime
	SecureCookies bool          // Set the Secure attribute on cookies

	AuthSharedSecret string // Shared secret for internal service authentication
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port:      getEnv("PORT", "8888"),
		KratosURL: getEnv("KRATOS_URL", "http://kratos:4433"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		MinioEndpoint:    getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:      getEnvBool("MINIO_USE_SSL", false),
		MinioBucket:      getEnv("MINIO_BUCKET", "uploads"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),
		UploadURLTTL:     15 * time.Minute,

		TokenSecret:   getEnv("TOKEN_SECRET", ""),
		TokenIssuer:   getEnv("TOKEN_ISSUER", "session-hub"),
		TokenTTL:      24 * time.Hour,
		SecureCookies: getEnvBool("SECURE_COOKIES", true),

		AuthSharedSecret: getEnv("AUTH_SHARED_SECRET", ""),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB format: %w", err)
		}
		config.RedisDB = db
	}

	if ttlStr := os.Getenv("UPLOAD_URL_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid UPLOAD_URL_TTL format: %w", err)
		}
		config.UploadURLTTL = duration
	}

	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL format: %w", err)
		}
		config.TokenTTL = duration
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.KratosURL == "" {
		return fmt.Errorf("KRATOS_URL cannot be empty")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty")
	}

	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	if c.UploadURLTTL <= 0 {
		return fmt.Errorf("UPLOAD_URL_TTL must be positive")
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
