package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BUYBUDDY_LLM_API_KEY", "test-api-key")
	t.Setenv("BUYBUDDY_AUTH_JWT_SECRET", "test-jwt-secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults with required secrets", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "development", cfg.Server.Environment)
		assert.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
		assert.Equal(t, int64(5*1024*1024), cfg.Scraper.MaxBodySize)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
		assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
		assert.Equal(t, "memory", cfg.Store.Type)
		assert.Equal(t, 100, cfg.RateLimit.PerMinute)
		assert.Equal(t, 20, cfg.RateLimit.Burst)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("BUYBUDDY_SERVER_PORT", "9090")
		t.Setenv("BUYBUDDY_SERVER_ENVIRONMENT", "production")
		t.Setenv("BUYBUDDY_LLM_MODEL", "gpt-4o")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "production", cfg.Server.Environment)
		assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	})

	t.Run("missing api key fails", func(t *testing.T) {
		t.Setenv("BUYBUDDY_LLM_API_KEY", "")
		t.Setenv("BUYBUDDY_AUTH_JWT_SECRET", "test-jwt-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("missing jwt secret fails", func(t *testing.T) {
		t.Setenv("BUYBUDDY_LLM_API_KEY", "test-api-key")
		t.Setenv("BUYBUDDY_AUTH_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret")
	})

	t.Run("unknown store type fails", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("BUYBUDDY_STORE_TYPE", "redis")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store type")
	})

	t.Run("mongo store requires a uri", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("BUYBUDDY_STORE_TYPE", "mongo")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Mongo URI")
	})

	t.Run("mongo store with uri is valid", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("BUYBUDDY_STORE_TYPE", "mongo")
		t.Setenv("BUYBUDDY_STORE_MONGO_URI", "mongodb://localhost:27017")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "mongo", cfg.Store.Type)
		assert.Equal(t, "buybuddy", cfg.Store.MongoDatabase)
	})
}
