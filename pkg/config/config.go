package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// KV backends selectable through KV_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	Port             string
	DatabaseURL      string
	DBMaxConns       int
	KVBackend        string
	RedisURL         string
	SQLitePath       string
	JWTSecret        string
	JWTIssuer        string
	JWTTTLMinutes    int
	// StateIdleMinutes is how long an account's saved state stays in memory
	// after its last request.
	StateIdleMinutes int
	LogLevel         slog.Level
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		KVBackend:        strings.ToLower(getEnv("KV_BACKEND", BackendPostgres)),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SQLitePath:       getEnv("SQLITE_PATH", "data/riseup.db"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:        getEnv("JWT_ISSUER", "riseup"),
		JWTTTLMinutes:    getEnvInt("JWT_TTL_MINUTES", 60),
		StateIdleMinutes: getEnvInt("STATE_IDLE_MINUTES", 15),
		LogLevel:         parseLevel(getEnv("LOG_LEVEL", "info")),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
