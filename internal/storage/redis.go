package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisKV is a KV backed by redis. Values never expire; redis is just a
// remote replacement for the local sqlite file.
type RedisKV struct {
	Client *redis.Client
}

// OpenRedis connects to redis at addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	return &RedisKV{Client: client}, nil
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{Client: client}
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return s.Client.Set(ctx, key, value, 0).Err()
}

func (s *RedisKV) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

func (s *RedisKV) Close() error {
	return s.Client.Close()
}
