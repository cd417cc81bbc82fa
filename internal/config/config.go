package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Processing ProcessingConfig
	Settings   SettingsConfig
	Redis      RedisConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ProcessingConfig struct {
	MaxFileSize   int64
	MaxBatchFiles int
	JPEGQuality   int
	OutputPrefix  string
	ArchiveName   string
	FailurePolicy string
}

type SettingsConfig struct {
	Backend string
	Path    string
	Key     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 60*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 5*time.Minute),
		},
		Processing: ProcessingConfig{
			MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 20*1024*1024), // 20MB
			MaxBatchFiles: getEnvAsInt("MAX_BATCH_FILES", 100),
			JPEGQuality:   getEnvAsInt("JPEG_QUALITY", 95),
			OutputPrefix:  getEnv("OUTPUT_PREFIX", ""),
			ArchiveName:   getEnv("ARCHIVE_NAME", "watermarked_images.zip"),
			FailurePolicy: strings.ToLower(getEnv("BATCH_FAILURE_POLICY", "skip")),
		},
		Settings: SettingsConfig{
			Backend: strings.ToLower(getEnv("SETTINGS_BACKEND", "file")),
			Path:    getEnv("SETTINGS_PATH", "settings.json"),
			Key:     getEnv("SETTINGS_KEY", "watermark:settings"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Processing.FailurePolicy {
	case "skip", "abort":
	default:
		return fmt.Errorf("BATCH_FAILURE_POLICY must be skip or abort, got %q", c.Processing.FailurePolicy)
	}

	switch c.Settings.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("SETTINGS_BACKEND must be file or redis, got %q", c.Settings.Backend)
	}

	if c.Processing.JPEGQuality < 1 || c.Processing.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", c.Processing.JPEGQuality)
	}

	if c.Processing.MaxFileSize <= 0 || c.Processing.MaxBatchFiles <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE and MAX_BATCH_FILES must be positive")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
