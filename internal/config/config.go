// Package config loads service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lavka.org/internal/auth"
)

// Config holds everything the binaries need to start.
type Config struct {
	ListenAddr string
	PGDSN      string

	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration

	BcryptCost  int
	DefaultRole auth.Role

	BotToken    string
	BotAdminIDs []int64

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; a missing file is
// not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:    getEnv("LAVKA_LISTEN_ADDR", ":8080"),
		PGDSN:         os.Getenv("LAVKA_PG_DSN"),
		TokenSecret:   os.Getenv("LAVKA_TOKEN_SECRET"),
		TokenIssuer:   getEnv("LAVKA_TOKEN_ISSUER", "lavka-api"),
		BotToken:      os.Getenv("LAVKA_BOT_TOKEN"),
		DefaultRole:   auth.RolePending,
		TokenTTL:      15 * time.Minute,
		BcryptCost:    10,
		RateBurst:     20,
		RatePerSecond: 10,
		MaxBodyBytes:  1 << 20,
	}

	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("config: LAVKA_TOKEN_SECRET is required")
	}

	var err error
	if cfg.TokenTTL, err = getDuration("LAVKA_TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = getInt("LAVKA_BCRYPT_COST", cfg.BcryptCost); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = getInt("LAVKA_RATE_BURST", cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.RatePerSecond, err = getInt("LAVKA_RATE_PER_SECOND", cfg.RatePerSecond); err != nil {
		return Config{}, err
	}

	for _, part := range strings.Split(os.Getenv("LAVKA_BOT_ADMIN_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: LAVKA_BOT_ADMIN_IDS: %w", err)
		}
		cfg.BotAdminIDs = append(cfg.BotAdminIDs, id)
	}

	if raw := strings.TrimSpace(os.Getenv("LAVKA_DEFAULT_ROLE")); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: LAVKA_DEFAULT_ROLE: %w", err)
		}
		cfg.DefaultRole = role
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return v, nil
}
