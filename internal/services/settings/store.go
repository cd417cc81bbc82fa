package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/image-watermark/internal/config"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store persists the last-used parameter defaults. A missing record yields
// models.DefaultSettings.
type Store interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
	HealthCheck(ctx context.Context) map[string]string
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Settings.Backend {
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Settings.Key), nil
	case BackendFile, "":
		return NewFileStore(cfg.Settings.Path), nil
	default:
		return nil, fmt.Errorf("unknown settings backend %q", cfg.Settings.Backend)
	}
}

// decode overlays saved values on the defaults so older records with
// missing keys still load.
func decode(data []byte) (models.Settings, error) {
	s := models.DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}
