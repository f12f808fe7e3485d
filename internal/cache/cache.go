// Package cache is the key-value store used for login sessions and token revocation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache interface {
	// Set stores value JSON-encoded under key. A zero ttl keeps the key forever.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

func SessionKey(accountID int64) string {
	return fmt.Sprintf("session:%d", accountID)
}

func RevokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

type Redis struct {
	client *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis connects using a redis:// URL and pings the server.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, payload, ttl).Err()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Nop is used when no redis is configured: writes vanish and nothing exists.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (Nop) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (Nop) Delete(context.Context, string) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
