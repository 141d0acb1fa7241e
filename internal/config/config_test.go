package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "data/startera.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Second, cfg.DBProbeTimeout)
	assert.Equal(t, 5*time.Second, cfg.DBRetryInterval)
	assert.Equal(t, PolicyAuto, cfg.VerificationPolicy)
	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 587, cfg.MailPort)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.MailEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.Cache.Methods["GET"])
	assert.True(t, cfg.RateLimit.Enabled)
	assert.GreaterOrEqual(t, cfg.RateLimit.TTL, 5*cfg.RateLimit.RefillInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("VERIFICATION_POLICY", "Pending")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("DEBUG", "true")
	t.Setenv("MAIL_SERVER", "smtp.example.com")
	t.Setenv("MAIL_USERNAME", "u")
	t.Setenv("MAIL_PASSWORD", "p")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PolicyPending, cfg.VerificationPolicy)
	assert.Equal(t, ProviderOpenAI, cfg.AIProvider)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.MailEnabled())
	assert.True(t, cfg.Cache.Methods["HEAD"])
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown policy", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("VERIFICATION_POLICY", "sometimes")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("AI_PROVIDER", "yandex")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestIsProduction(t *testing.T) {
	assert.True(t, Config{Env: "Production"}.IsProduction())
	assert.False(t, Config{Env: "dev"}.IsProduction())
}

func TestNewRedisClientDisabled(t *testing.T) {
	assert.Nil(t, NewRedisClient("", zap.NewNop()))
	assert.Nil(t, NewRedisClient("::not a url", zap.NewNop()))
	assert.Nil(t, NewRedisClient("redis://127.0.0.1:1/0", zap.NewNop()))
}
