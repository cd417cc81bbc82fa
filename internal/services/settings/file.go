package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/phambaophuc/image-watermark/internal/models"
)

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (models.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.DefaultSettings(), nil
		}
		return models.DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}
	return decode(data)
}

// Save overwrites the settings file. The write goes through a temp file so a
// concurrent Load never sees a partial record.
func (s *FileStore) Save(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

func (s *FileStore) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	info, err := os.Stat(filepath.Dir(s.path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		status["settings_file"] = "not configured"
	case err != nil:
		status["settings_file"] = "unhealthy: " + err.Error()
	case !info.IsDir():
		status["settings_file"] = "unhealthy: parent is not a directory"
	default:
		status["settings_file"] = "healthy"
	}

	return status
}
