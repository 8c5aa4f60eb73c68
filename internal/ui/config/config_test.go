package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.APITimeout)
	assert.Equal(t, 2*time.Second, cfg.ButtonReset)
	assert.Equal(t, 5*time.Minute, cfg.ReportTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("SAM_ENVIRONMENT", "prod")
	t.Setenv("SAM_PORT", "8080")
	t.Setenv("SAM_API_BASE_URL", "https://sam.example.org/api/")
	t.Setenv("SAM_API_TIMEOUT", "30s")
	t.Setenv("SAM_ALLOWED_ORIGINS", "https://a.example.org | https://b.example.org")

	cfg, err := NewConfig(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://sam.example.org/api", cfg.APIBaseURL, "trailing slash is trimmed")
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.AllowedOrigins)
}

func TestNewConfigLoadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sam.env")
	require.NoError(t, os.WriteFile(path, []byte("SAM_REDIS_ADDR=redis:6379\nSAM_BUTTON_RESET=3s\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("SAM_REDIS_ADDR")
		_ = os.Unsetenv("SAM_BUTTON_RESET")
	})

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.ButtonReset)
}

func TestNewConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "environment", key: "SAM_ENVIRONMENT", value: "qa"},
		{name: "port", key: "SAM_PORT", value: "70000"},
		{name: "relative url", key: "SAM_API_BASE_URL", value: "localhost:5000/api"},
		{name: "scheme", key: "SAM_API_BASE_URL", value: "ftp://sam.example.org"},
		{name: "negative api timeout", key: "SAM_API_TIMEOUT", value: "-1s"},
		{name: "zero button reset", key: "SAM_BUTTON_RESET", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := NewConfig(emptyEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestNewConfigExplicitEnvFileMustExist(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewConfigDefaultEnvFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
}
