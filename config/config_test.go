package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_AppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/scout")

	cfg, err := loadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "5200", cfg.Port)
	assert.Equal(t, "he", cfg.DefaultLanguage)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL())
	assert.Equal(t, int64(500*1024*1024), cfg.MaxUploadBytes())
	assert.False(t, cfg.UsesObjectStorage())
	assert.Equal(t, 5*time.Minute, cfg.StatsInterval())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/scout")
	t.Setenv("PORT", "8080")
	t.Setenv("DEFAULT_LANGUAGE", "en")
	t.Setenv("SESSION_TTL_HOURS", "24")
	t.Setenv("S3_BUCKET", "videos")
	t.Setenv("S3_ACCESS_KEY_ID", "key")

	cfg, err := loadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.True(t, cfg.UsesObjectStorage())
}

func TestLoadFromEnv_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := loadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate_RejectsUnknownLanguage(t *testing.T) {
	cfg := Defaults()
	cfg.DatabaseURL = "postgres://x"
	cfg.DefaultLanguage = "fr"
	assert.Error(t, cfg.Validate())
}

func TestOrigins_TrimsAndDropsEmpty(t *testing.T) {
	cfg := Defaults()
	cfg.AllowedOrigins = " https://a.example , ,https://b.example"
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}
