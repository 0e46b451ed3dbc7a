// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// Config holds all process-level settings.
type Config struct {
	BackendURL string
	AuthToken  string

	Role       domain.Role
	ActorID    string // client or notary identity, per Role
	NotaryID   string // target office when running as a client
	NotaryName string

	RefreshInterval   time.Duration // silent appointment/notification refresh
	DirectoryInterval time.Duration // notary directory / catalog poll
	RequestTimeout    time.Duration

	LogPath string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		BackendURL:        "http://localhost:8080",
		Role:              domain.RoleClient,
		ActorID:           "client-1",
		NotaryID:          "notary-1",
		NotaryName:        "Studio Notarile",
		RefreshInterval:   30 * time.Second,
		DirectoryInterval: 5 * time.Minute,
		RequestTimeout:    15 * time.Second,
		LogPath:           "sportello.log",
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset value. A .env file in the working directory is
// honored when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("SPORTELLO_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("SPORTELLO_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("SPORTELLO_ROLE"); v != "" {
		if r := domain.Role(v); r == domain.RoleClient || r == domain.RoleNotary {
			cfg.Role = r
		}
	}
	if v := os.Getenv("SPORTELLO_ACTOR_ID"); v != "" {
		cfg.ActorID = v
	}
	if v := os.Getenv("SPORTELLO_NOTARY_ID"); v != "" {
		cfg.NotaryID = v
	}
	if v := os.Getenv("SPORTELLO_NOTARY_NAME"); v != "" {
		cfg.NotaryName = v
	}
	if v := os.Getenv("SPORTELLO_REFRESH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SPORTELLO_DIRECTORY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DirectoryInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SPORTELLO_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("SPORTELLO_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	return cfg
}
