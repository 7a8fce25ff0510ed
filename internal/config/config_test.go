package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/alarm/internal/config"
	"github.com/kode4food/alarm/pkg/scheduler"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, config.DefaultAPIHost, cfg.APIHost)
	assert.Equal(t, config.DefaultAPIPort, cfg.APIPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(86400000), cfg.MaxDelay)
	assert.Equal(t, scheduler.DefaultMaxDelay, cfg.MaxDelayDuration())
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, config.DefaultRedisChannel, cfg.RedisChannel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_HOST", "127.0.0.1")
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_DELAY", "60000")
	t.Setenv("SHUTDOWN_TIMEOUT", "2500")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_CHANNEL", "reminders")

	cfg := config.NewDefaultConfig()
	assert.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "127.0.0.1", cfg.APIHost)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.MaxDelayDuration())
	assert.Equal(t, 2500*time.Millisecond, cfg.ShutdownTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "reminders", cfg.RedisChannel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvErrors(t *testing.T) {
	cases := map[string]string{
		"API_PORT":         "not-a-port",
		"MAX_DELAY":        "2147483648",
		"SHUTDOWN_TIMEOUT": "0",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			cfg := config.NewDefaultConfig()
			err := cfg.LoadFromEnv()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.APIPort = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidAPIPort)

	cfg = config.NewDefaultConfig()
	cfg.MaxDelay = config.MaxMaxDelay + 1
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidMaxDelay)

	cfg = config.NewDefaultConfig()
	cfg.MaxDelay = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidMaxDelay)

	cfg = config.NewDefaultConfig()
	cfg.ShutdownTimeout = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidShutdownTimeout)
}
