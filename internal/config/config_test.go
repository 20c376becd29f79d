package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 10*time.Minute, cfg.BalanceCacheTTL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("JWT_SECRET_KEY", "s3cret")
		t.Setenv("BALANCE_CACHE_TTL", "30s")
		t.Setenv("DATABASE_NAME", "cashbook_test")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "s3cret", cfg.JWTSecret)
		assert.Equal(t, 30*time.Second, cfg.BalanceCacheTTL)
		assert.Equal(t, "cashbook_test", viper.GetString("database.name"))
	})
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense").GetLevel())

	_, ok := NewLogger("info").Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}
