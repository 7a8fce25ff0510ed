// Package relay forwards fired alarms to other services over Redis pub/sub
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/alarm/pkg/api"
)

// Redis publishes each fired alarm as JSON on a single channel
type Redis struct {
	client  *redis.Client
	channel string
}

// DefaultChannel is used when no channel name is configured
const DefaultChannel = "alarm:fired"

var ErrPublish = errors.New("failed to publish fired alarm")

// NewRedis connects to the Redis server at addr and verifies it responds
func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{
		client:  client,
		channel: channel,
	}, nil
}

// Publish sends fired to every subscriber of the relay's channel
func (r *Redis) Publish(ctx context.Context, fired *api.FiredAlarm) error {
	data, err := json.Marshal(fired)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return nil
}

// Channel returns the name of the channel alarms are published on
func (r *Redis) Channel() string {
	return r.channel
}

// Close releases the Redis connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
