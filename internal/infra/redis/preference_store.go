package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// PreferenceStore persists preferences as plain keys:
// SET console:pref:{key} {value} EX ttl
type PreferenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreferenceStore(client *redis.Client, ttl time.Duration) *PreferenceStore {
	return &PreferenceStore{client: client, ttl: ttl}
}

func (s *PreferenceStore) GetPreference(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *PreferenceStore) SetPreference(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *PreferenceStore) key(key string) string {
	return "console:pref:" + key
}
