package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultGuestCartTTL keeps an untouched guest cart for a week.
const DefaultGuestCartTTL = 7 * 24 * time.Hour

// RedisDeviceStores hands out key-value stores scoped to one shopper device.
type RedisDeviceStores struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeviceStores(client *redis.Client, ttl time.Duration) *RedisDeviceStores {
	if ttl <= 0 {
		ttl = DefaultGuestCartTTL
	}
	return &RedisDeviceStores{client: client, ttl: ttl}
}

func (s *RedisDeviceStores) ForDevice(deviceID string) *RedisDeviceStore {
	return &RedisDeviceStore{client: s.client, ttl: s.ttl, deviceID: deviceID}
}

// RedisDeviceStore is the durable storage of a single device. Every write
// refreshes the TTL of the key.
type RedisDeviceStore struct {
	client   *redis.Client
	ttl      time.Duration
	deviceID string
}

func (r *RedisDeviceStore) getKey(key string) string {
	return fmt.Sprintf("device:%s:%s", r.deviceID, key)
}

// Get returns ok=false when the key is absent or expired.
func (r *RedisDeviceStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.getKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisDeviceStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.getKey(key), value, r.ttl).Err()
}

func (r *RedisDeviceStore) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.getKey(key)).Err()
}
