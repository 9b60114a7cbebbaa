package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.BaseURL)
	assert.Equal(t, "", cfg.APIKey)
	assert.Equal(t, BackendFile, cfg.SessionBackend)
	assert.Equal(t, "adminctl:", cfg.SessionKeyPrefix)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.CircuitBreakerEnabled)
	assert.Equal(t, float64(0), cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RealtimeReconnectAttempts)
	assert.Equal(t, time.Second, cfg.RealtimeReconnectDelay)
	assert.Equal(t, "session.json", filepath.Base(cfg.SessionFile))
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADMIN_API_BASE_URL", "https://api.example.com")
	t.Setenv("ADMIN_API_KEY", "k-123")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SESSION_FILE", "/tmp/s.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "k-123", cfg.APIKey)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "localhost:6380", cfg.Redis().Addr())
	assert.Equal(t, "/tmp/s.json", cfg.SessionFile)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_BACKEND")
}

func TestValidate_BadBaseURL(t *testing.T) {
	cfg := &Config{LogLevel: "info", LogFormat: "json", SessionBackend: BackendFile, BaseURL: "not a url"}
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_API_BASE_URL")
}

func TestValidate_ProductionRequiresAPIKey(t *testing.T) {
	cfg := &Config{Environment: "production", LogLevel: "info", LogFormat: "json", SessionBackend: BackendFile}
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_API_KEY")

	cfg.APIKey = "k"
	assert.NoError(t, cfg.validate())
}

func TestValidate_SampleRateRange(t *testing.T) {
	cfg := &Config{LogLevel: "info", LogFormat: "json", SessionBackend: BackendMemory, OTELSampleRate: 1.5}
	assert.Error(t, cfg.validate())
}
