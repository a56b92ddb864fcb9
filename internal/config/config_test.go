package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.NotEmpty(t, cfg.Database.URI)
	assert.NotEmpty(t, cfg.Redis.URI)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpirationTime)
	assert.Equal(t, "classroom-files", cfg.Minio.Bucket)
	assert.Equal(t, 15*time.Minute, cfg.Email.CodeTTL)
	assert.Equal(t, time.Minute, cfg.Email.ResendInterval)
	assert.Equal(t, int64(50), cfg.Upload.MaxFileSizeMB)
}

func TestLoadConfigSingleton(t *testing.T) {
	first, err := LoadConfig()
	require.NoError(t, err)
	second, err := LoadConfig()
	require.NoError(t, err)

	assert.Same(t, first, second)
}
