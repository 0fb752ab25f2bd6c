package kv

import (
	"context"
	"fmt"

	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"nexus-hospital/config"
)

// changeChannelPrefix namespaces the pub/sub channels carrying change
// notifications, one channel per key.
const changeChannelPrefix = "kv:changed:"

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")

	return client, nil
}

// RedisStore implements Store on a Redis client. Every Set publishes the new
// value on the key's change channel so subscribers in other processes can
// refresh their in-memory copy.
type RedisStore struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisStore(client *redis.Client, log *logrus.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	// Change notification is best effort: a missed publish leaves other
	// processes with a stale copy until their next write, same as a missed
	// storage event between tabs.
	if err := s.client.Publish(ctx, changeChannelPrefix+key, value).Err(); err != nil {
		s.log.Warnf("Failed to publish change for %s: %+v", key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context, key string) (<-chan []byte, func(), error) {
	pubsub := s.client.Subscribe(ctx, changeChannelPrefix+key)

	// Force the subscription to be established before returning so callers
	// never miss writes that happen right after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			s.log.Warnf("Failed to close subscription for %s: %+v", key, err)
		}
	}

	return out, cancel, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
