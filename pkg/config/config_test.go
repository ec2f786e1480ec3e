package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, int64(1024), cfg.Upload.MinFileSize)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, "gcs", cfg.Storage.Type)
	assert.Equal(t, "firestore", cfg.Docstore.Type)
	assert.Equal(t, "firebase", cfg.Auth.Mode)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "5242880")
	t.Setenv("UPLOAD_ALLOWED_TYPES", "image/png")
	t.Setenv("STORAGE_TYPE", "local")
	t.Setenv("DOCSTORE_TYPE", "memory")
	t.Setenv("AUTH_MODE", "static")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := LoadFromEnv()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, []string{"image/png"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "memory", cfg.Docstore.Type)
	assert.Equal(t, "static", cfg.Auth.Mode)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "whenever")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")

	cfg := LoadFromEnv()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr())
}
