package config

import (
	"errors"
	"os"
	"time"
)

// Config captures process-level configuration. Everything comes from the
// environment so main stays lean.
type Config struct {
	// BotToken authenticates against the Telegram Bot API. Required.
	BotToken string
	// DatabaseURL is the PostgreSQL connection string. Required.
	DatabaseURL string
	// OpsAddr is the listen address for the health/metrics HTTP server.
	OpsAddr string
	// SessionTTL bounds how long an in-progress registration may idle before
	// the redis session store drops it. Ignored by the in-memory store.
	SessionTTL time.Duration

	Redis RedisConfig
}

// RedisConfig tunes the optional redis-backed session store. An empty URL
// means sessions stay in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	opsAddr := os.Getenv("OPS_ADDR")
	if opsAddr == "" {
		opsAddr = ":8080"
	}

	sessionTTL := 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			sessionTTL = d
		}
	}

	return Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		OpsAddr:     opsAddr,
		SessionTTL:  sessionTTL,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

// Validate reports missing required settings. The process must refuse to
// start on error rather than run degraded.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}
