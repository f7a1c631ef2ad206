package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	redisConnectAttempts = 30
	redisMaxBackoff      = 30 * time.Second
	redisPingTimeout     = 5 * time.Second
)

// RedisStateStore keeps each session namespace in a Redis hash, one field per key.
type RedisStateStore struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisStateStore accepts either a redis:// URL or a plain host:port address.
func NewRedisStateStore(redisAddr string, log logrus.FieldLogger) *RedisStateStore {
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			DialTimeout:  30 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}
	return &RedisStateStore{client: redis.NewClient(opts), log: log}
}

// Initialize waits for Redis to answer, backing off exponentially between pings.
func (r *RedisStateStore) Initialize(ctx context.Context) error {
	for i := 0; i < redisConnectAttempts; i++ {
		err := r.Ping(ctx)
		if err == nil {
			r.log.WithField("attempt", i+1).Info("Redis state store connected")
			return nil
		}
		r.log.WithError(err).WithField("attempt", i+1).Warn("Redis ping failed")

		backoff := time.Duration(1000*(1<<uint(i))) * time.Millisecond
		if backoff > redisMaxBackoff {
			backoff = redisMaxBackoff
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("failed to connect to Redis after %d attempts", redisConnectAttempts)
}

func (r *RedisStateStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	value, err := r.client.HGet(ctx, namespace, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis HGet error: %w", err)
	}
	return value, true, nil
}

func (r *RedisStateStore) Set(ctx context.Context, namespace, key, value string) error {
	if err := r.client.HSet(ctx, namespace, key, value).Err(); err != nil {
		return fmt.Errorf("redis HSet error: %w", err)
	}
	return nil
}

func (r *RedisStateStore) Delete(ctx context.Context, namespace, key string) error {
	if err := r.client.HDel(ctx, namespace, key).Err(); err != nil {
		return fmt.Errorf("redis HDel error: %w", err)
	}
	return nil
}

func (r *RedisStateStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return r.client.Ping(pingCtx).Err()
}

func (r *RedisStateStore) Close() error {
	return r.client.Close()
}
