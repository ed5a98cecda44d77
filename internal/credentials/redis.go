package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares credentials between machines of one profile. Entries
// expire after ttl; zero keeps them forever.
type RedisStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	profile string
}

func NewRedisStore(rdb *redis.Client, profile string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, profile: profile, ttl: ttl}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("dictation:credentials:%s", s.profile)
}

func (s *RedisStore) Load(ctx context.Context) (Credentials, error) {
	val, err := s.rdb.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: redis get: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(val, &c); err != nil {
		return Credentials{}, fmt.Errorf("credentials: decode: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, c Credentials) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(), b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key()).Err()
}
