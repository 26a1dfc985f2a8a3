package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Backend string

const (
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Flora"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Storage struct {
		Backend  Backend `envconfig:"STORAGE_BACKEND" default:"file"`
		DataFile string  `envconfig:"DATA_FILE" default:"data/data.json"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"flora"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	PDF struct {
		URL     string        `envconfig:"PDF_SERVICE_URL"`
		Token   string        `envconfig:"PDF_SERVICE_TOKEN"`
		Timeout time.Duration `envconfig:"PDF_TIMEOUT" default:"30s"`
	}

	Mail struct {
		APIKey    string        `envconfig:"SENDGRID_API_KEY"`
		BaseURL   string        `envconfig:"SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
		FromEmail string        `envconfig:"SENDGRID_FROM_EMAIL"`
		FromName  string        `envconfig:"SENDGRID_FROM_NAME"`
		Timeout   time.Duration `envconfig:"SENDGRID_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.App.LogLevel))); err != nil {
		return slog.LevelInfo
	}

	return level
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendFile, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return &cfg, nil
}
