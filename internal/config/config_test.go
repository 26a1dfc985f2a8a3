package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "data/data.json", cfg.Storage.DataFile)
	assert.Equal(t, 30*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_NAME", "flowers")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://flora.example")
	t.Setenv("PDF_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/flowers?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"http://localhost:3000", "https://flora.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.PDF.Timeout)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestSlogLevel_Unknown(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
