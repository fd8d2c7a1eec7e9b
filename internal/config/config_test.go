package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.RecomputeTotal)
	assert.Equal(t, 5, cfg.LoginRateBurst)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=shop dbname=shop sslmode=disable")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("CHECKOUT_RECOMPUTE_TOTAL", "true")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.RecomputeTotal)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQURL)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DATABASE_DRIVER")
}

func TestLoad_RejectsNonPositiveRate(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT", "0")

	_, err := Load()
	assert.Error(t, err)
}
