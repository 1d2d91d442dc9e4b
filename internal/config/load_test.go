package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "*", cfg.Server.Origin)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "swagger", cfg.Server.DocsUI)
	assert.True(t, cfg.Server.Compression)
	assert.Equal(t, "v1", cfg.API.Version)
	assert.Empty(t, cfg.API.SpecFile)
	assert.False(t, cfg.API.Strict)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("APISERVER_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("APISERVER_SERVER_TIMEOUT", "5s")
	t.Setenv("APISERVER_SERVER_RATE_LIMIT_RPS", "2.5")
	t.Setenv("APISERVER_API_SECRET", "s3cret")
	t.Setenv("APISERVER_API_ERROR_DETAILS", "true")
	t.Setenv("APISERVER_MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load(nil)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit.RPS, 1e-9)
	assert.Equal(t, "s3cret", cfg.API.Secret)
	assert.True(t, cfg.API.ErrorDetails)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("APISERVER_SERVER_LOG_LEVEL", "warn")
	t.Setenv("APISERVER_API_VERSION", "v2")

	cfg, err := Load([]string{"--log-level", "debug", "--strict", "--origin", "https://app.example.com"})

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "v2", cfg.API.Version)
	assert.True(t, cfg.API.Strict)
	assert.Equal(t, "https://app.example.com", cfg.Server.Origin)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte("openapi: 3.0.3\n"), 0o600))

	configPath := filepath.Join(dir, "apiserver.yaml")
	content := "server:\n  addr: \":7070\"\n  docs_ui: redoc\n  rate_limit:\n    rps: 10\n    burst: 20\napi:\n  version: v3\n  spec_file: " + specPath + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	t.Setenv("APISERVER_API_VERSION", "v4")
	cfg, err := Load([]string{"-c", configPath})

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "redoc", cfg.Server.DocsUI)
	assert.InDelta(t, 10, cfg.Server.RateLimit.RPS, 1e-9)
	assert.Equal(t, 20, cfg.Server.RateLimit.Burst)
	assert.Equal(t, specPath, cfg.API.SpecFile)
	assert.Equal(t, "v4", cfg.API.Version, "environment wins over the config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "log level", args: []string{"--log-level", "verbose"}},
		{name: "address", args: []string{"--addr", "localhost"}},
		{name: "docs ui", args: []string{"--docs-ui", "elements"}},
		{name: "version with slash", args: []string{"--api-version", "v1/beta"}},
		{name: "missing spec file", args: []string{"--spec", "/does/not/exist.yaml"}},
		{name: "api root", args: []string{"--api-root", "api"}},
		{name: "mongo uri", env: map[string]string{"APISERVER_MONGO_URI": "not a uri"}},
		{name: "negative rate", env: map[string]string{"APISERVER_SERVER_RATE_LIMIT_RPS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"--help"})
	assert.True(t, errors.Is(err, ErrHelp))
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ServerConfig{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelError, ServerConfig{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, ServerConfig{LogLevel: "loud"}.SlogLevel())
}
