package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // iss claim on minted tokens

	AccessTokenSecret  string        // Required: HS256 secret for access tokens
	RefreshTokenSecret string        // Required: HS256 secret for refresh tokens, must differ
	AccessTokenTTL     time.Duration // Optional (default: 15m)
	RefreshTokenTTL    time.Duration // Optional (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./cliptide.db)
	CookieSecure bool   // Optional: set Secure on session cookies (default: true)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // debug, info, warn, error (default: info)
	LogFormat           string        // json, text (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:              getEnvOrDefault("CLIPTIDE_ISSUER", "cliptide-auth"),
		AccessTokenSecret:   os.Getenv("CLIPTIDE_ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:  os.Getenv("CLIPTIDE_REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:      getEnvDurationOrDefault("CLIPTIDE_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:     getEnvDurationOrDefault("CLIPTIDE_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DatabaseFile:        getEnvOrDefault("CLIPTIDE_DATABASE_FILE", "cliptide.db"),
		CookieSecure:        getEnvBoolOrDefault("CLIPTIDE_COOKIE_SECURE", true),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("CLIPTIDE_ACCESS_TOKEN_SECRET and CLIPTIDE_REFRESH_TOKEN_SECRET are required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
