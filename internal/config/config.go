// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBConn          string
	ServerAddress   string
	JWTSecret       string
	JWTTTL          time.Duration
	ArchiveInterval time.Duration
	Env             string
	CORSOrigins     []string
	Admin           AdminConfig
}

// AdminConfig describes the administrator seeded on first start.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads variables from the process environment, after merging an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBConn:        getenv("POSTGRES_CONN"),
		ServerAddress: getenv("SERVER_ADDRESS"),
		JWTSecret:     getenv("JWT_SECRET"),
		Env:           getenv("APP_ENV"),
		Admin: AdminConfig{
			Name:     getenv("ADMIN_NAME"),
			Email:    getenv("ADMIN_EMAIL"),
			Password: getenv("ADMIN_PASSWORD"),
		},
	}

	if cfg.DBConn == "" {
		return nil, errors.New("POSTGRES_CONN env variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET env variable is not set")
	}
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = "0.0.0.0:8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Env != "development" && cfg.Env != "production" {
		return nil, fmt.Errorf("APP_ENV must be development or production, got %q", cfg.Env)
	}
	if cfg.Admin.Name == "" {
		cfg.Admin.Name = "Administrator"
	}

	var err error
	if cfg.JWTTTL, err = duration(getenv, "JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ArchiveInterval, err = duration(getenv, "ARCHIVE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	origins := getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
