package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("IMAGE_MAX_WIDTH", "-4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 1600, cfg.ImageMaxWidth)
	assert.Equal(t, "course-images", cfg.StorageBucket)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("STORAGE_URL", "https://store.example.com/")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "https://store.example.com", cfg.StorageURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 1024, cfg.UploadMaxBytes)
}
