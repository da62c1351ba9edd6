package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Engine on a Redis server. Values are stored as JSON,
// so anything json.Marshal accepts can be cached; reads return the
// decoded value, which means numbers come back as float64.
type Redis struct {
	config *Config
	client *redis.Client
}

// NewRedis creates an unconnected redis engine.
func NewRedis(cfg *Config) *Redis {
	return &Redis{config: cfg}
}

// Connect dials the server and verifies the connection with a ping.
func (r *Redis) Connect(ctx context.Context) error {
	opts, err := redis.ParseURL(r.config.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	if r.config.RedisPassword != "" {
		opts.Password = r.config.RedisPassword
	}
	if r.config.RedisDB != 0 {
		opts.DB = r.config.RedisDB
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis: %w", err)
	}
	r.client = client
	return nil
}

// Close releases the client connection pool.
func (r *Redis) Close(_ context.Context) error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// Get retrieves and decodes an item. A missing key is a miss, as is any
// value that fails to decode.
func (r *Redis) Get(ctx context.Context, key string) (any, bool) {
	if r.client == nil {
		return nil, false
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return value, true
}

// Set encodes and stores an item with the effective TTL.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return r.client.Set(ctx, key, data, r.config.ttlOrDefault(ttl)).Err()
}

// Delete removes an item. Deleting an absent key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return ErrNotConnected
	}

	err := r.client.Del(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Flush clears the selected database.
func (r *Redis) Flush(ctx context.Context) error {
	if r.client == nil {
		return ErrNotConnected
	}
	return r.client.FlushDB(ctx).Err()
}
