package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "watermark:settings"

type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (models.Settings, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.DefaultSettings(), nil
		}
		return models.DefaultSettings(), fmt.Errorf("settings get error: %w", err)
	}
	return decode(data)
}

// Save stores the record without expiry; the last run always wins.
func (s *RedisStore) Save(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisStore) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if err := s.client.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	return status
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
