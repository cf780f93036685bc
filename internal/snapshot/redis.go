package snapshot

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(addr string, password string, db int, prefix string) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if prefix == "" {
		prefix = "ricemill:"
	}

	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (b *RedisBackend) Save(ctx context.Context, key string, payload []byte) error {
	return b.client.Set(ctx, b.prefix+key, payload, 0).Err()
}
