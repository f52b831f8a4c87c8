package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// RedisRepository stores each cart as one string value under "<prefix>:<session>".
type RedisRepository struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisRepository returns a repository whose keys expire ttl after the last save; zero keeps
// them forever. An empty prefix means cart.StorageKey.
func NewRedisRepository(client redis.Cmdable, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = cart.StorageKey
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, data []byte) error {
	return r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err()
}
