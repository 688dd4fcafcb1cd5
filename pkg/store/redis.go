package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures RedisStore. Defaults can be loaded via envdecode.
type RedisConfig struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: FIELDSET_KEY_PREFIX
	KeyPrefix string `env:"FIELDSET_KEY_PREFIX,default=fieldset:submissions:"`
	// MaxPerForm bounds the list kept per form. ENV: FIELDSET_MAX_PER_FORM
	MaxPerForm int64 `env:"FIELDSET_MAX_PER_FORM,default=1024"`
}

// RedisStore persists submissions in Redis, one JSON-encoded list per
// form, newest first, trimmed to MaxPerForm entries.
type RedisStore struct {
	client     *redis.Client
	keyPrefix  string
	maxPerForm int64
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "fieldset:submissions:"
	}
	max := cfg.MaxPerForm
	if max <= 0 {
		max = 1024
	}
	return &RedisStore{client: client, keyPrefix: prefix, maxPerForm: max}, nil
}

// NewRedisStoreFromEnv builds a RedisStore using envdecode to populate
// RedisConfig.
func NewRedisStoreFromEnv() (*RedisStore, error) {
	var cfg RedisConfig
	// Defaults are provided via struct tags.
	_ = envdecode.Decode(&cfg)
	return NewRedisStore(cfg)
}

func (s *RedisStore) key(formName string) string {
	return s.keyPrefix + formName
}

// Save pushes the submission onto its form's list and trims the tail.
func (s *RedisStore) Save(ctx context.Context, sub Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("store: marshal submission: %w", err)
	}

	key := s.key(sub.Form)
	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("store: lpush %s: %w", key, err)
	}
	if err := s.client.LTrim(ctx, key, 0, s.maxPerForm-1).Err(); err != nil {
		return fmt.Errorf("store: ltrim %s: %w", key, err)
	}
	return nil
}

// List returns the form's submissions, newest first.
func (s *RedisStore) List(ctx context.Context, formName string, limit int) ([]Submission, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	key := s.key(formName)
	raw, err := s.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("store: lrange %s: %w", key, err)
	}

	subs := make([]Submission, 0, len(raw))
	for _, item := range raw {
		var sub Submission
		if err := json.Unmarshal([]byte(item), &sub); err != nil {
			return nil, fmt.Errorf("store: unmarshal submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Compile-time interface check
var _ Store = (*RedisStore)(nil)
