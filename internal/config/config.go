// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	App      AppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `envconfig:"PORT" default:"8080"`
	ReadTimeout  int    `envconfig:"SERVER_READ_TIMEOUT" default:"15"`  // seconds
	WriteTimeout int    `envconfig:"SERVER_WRITE_TIMEOUT" default:"15"` // seconds
	IdleTimeout  int    `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`  // seconds
	// RateLimit is the number of API requests allowed per IP and minute.
	RateLimit int `envconfig:"API_RATE_LIMIT" default:"300"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"postgres"` // postgres or sqlite
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"invoices"`
	Password string `envconfig:"DB_PASSWORD" default:"invoices123"`
	DBName   string `envconfig:"DB_NAME" default:"invoices"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	// Path is the sqlite database file, used when Driver is sqlite.
	Path  string `envconfig:"DB_PATH" default:"invoices.db"`
	Debug bool   `envconfig:"DB_DEBUG" default:"false"`
}

// CacheConfig holds the Redis catalog cache settings. An empty address
// disables the cache.
type CacheConfig struct {
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	TTL       time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool   `envconfig:"DEV" default:"true"`
	Migrations bool   `envconfig:"MIGRATIONS" default:"false"`
	Seed       bool   `envconfig:"SEED" default:"false"`
	Lang       string `envconfig:"DEFAULT_LANG" default:"fr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Env returns the logger environment name.
func (a AppConfig) Env() string {
	if a.Dev {
		return "development"
	}
	return "production"
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	var cfg Config
	for name, spec := range map[string]any{
		"server":   &cfg.Server,
		"database": &cfg.Database,
		"cache":    &cfg.Cache,
		"app":      &cfg.App,
		"log":      &cfg.Log,
	} {
		if err := envconfig.Process("", spec); err != nil {
			return nil, fmt.Errorf("load %s config: %w", name, err)
		}
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	return &cfg, nil
}
