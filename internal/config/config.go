package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/alarm/pkg/scheduler"
)

type (
	// Config holds configuration settings for the alarm daemon
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Scheduler
		MaxDelay int64 // milliseconds

		// Relay; empty RedisAddr disables forwarding
		RedisAddr    string
		RedisChannel string

		// Process
		ShutdownTimeout time.Duration
	}
)

const (
	DefaultAPIPort         = 8080
	DefaultAPIHost         = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRedisChannel    = "alarm:fired"
	MaxTCPPort             = 65535

	DefaultMaxDelay    = int64(scheduler.DefaultMaxDelay / time.Millisecond)
	MaxMaxDelay        = int64(scheduler.MaxTimerDelay / time.Millisecond)
	MaxShutdownTimeout = int64(time.Hour / time.Millisecond)
)

var (
	ErrInvalidAPIPort         = errors.New("invalid API port")
	ErrInvalidMaxDelay        = errors.New("max delay out of range")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// API server and scheduler
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        DefaultLogLevel,
		MaxDelay:        DefaultMaxDelay,
		RedisChannel:    DefaultRedisChannel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		c.RedisAddr = redisAddr
	}
	if redisChannel := os.Getenv("REDIS_CHANNEL"); redisChannel != "" {
		c.RedisChannel = redisChannel
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_DELAY", &c.MaxDelay, 0, MaxMaxDelay,
	); err != nil {
		return err
	}

	timeout := int64(c.ShutdownTimeout / time.Millisecond)
	if err := loadEnvInt(
		"SHUTDOWN_TIMEOUT", &timeout, 0, MaxShutdownTimeout,
	); err != nil {
		return err
	}
	c.ShutdownTimeout = time.Duration(timeout) * time.Millisecond

	return nil
}

// MaxDelayDuration returns MaxDelay as a time.Duration
func (c *Config) MaxDelayDuration() time.Duration {
	return time.Duration(c.MaxDelay) * time.Millisecond
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.MaxDelay <= 0 || c.MaxDelay > MaxMaxDelay {
		return fmt.Errorf("%w: %d", ErrInvalidMaxDelay, c.MaxDelay)
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
