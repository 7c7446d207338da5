package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy-299/TomatoMall/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOMATOMALL_BASE_URL", "https://mall.example.com")
	t.Setenv("TOMATOMALL_TIMEOUT_SEC", "30")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://mall.example.com", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	t.Setenv("TOMATOMALL_TIMEOUT_SEC", "0")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}
