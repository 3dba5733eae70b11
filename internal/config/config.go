package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the service.
type Config struct {
	Env           string
	ListenAddr    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Feeds to pre-cache on startup, comma separated in PRECACHE_FEEDS.
	PrecacheFeeds []string
	// Max items taken from each feed.
	PrecacheLimit int
	// Pause between pre-cache candidates.
	PrecacheDelay time.Duration

	RequestTimeout time.Duration
	UserAgent      string
}

// Default returns sane defaults for local development.
func Default() *Config {
	return &Config{
		Env:            "development",
		ListenAddr:     ":8080",
		RedisAddr:      "localhost:6379",
		RedisDB:        0,
		PrecacheLimit:  10,
		PrecacheDelay:  2 * time.Second,
		RequestTimeout: 15 * time.Second,
		UserAgent:      "Mozilla/5.0 (compatible; ReadcacheBot/1.0)",
	}
}

// Load reads .env (if present) and applies environment overrides on top of the
// defaults. Env always wins over the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}
	if v := os.Getenv("PRECACHE_FEEDS"); v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.PrecacheFeeds = append(cfg.PrecacheFeeds, f)
			}
		}
	}
	if v := os.Getenv("PRECACHE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse PRECACHE_LIMIT: %w", err)
		}
		cfg.PrecacheLimit = n
	}
	if v := os.Getenv("PRECACHE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse PRECACHE_DELAY: %w", err)
		}
		cfg.PrecacheDelay = d
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	return cfg, nil
}
