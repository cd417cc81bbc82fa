package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const OutputExtension = ".jpg"

func DownloadImage(ctx context.Context, imageURL string, maxSize int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	// Read one byte past the limit so oversized bodies are detected.
	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	if len(imageData) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	if int64(len(imageData)) > maxSize {
		return nil, "", fmt.Errorf("image exceeds maximum size of %d bytes", maxSize)
	}

	contentType := http.DetectContentType(imageData)
	if !IsValidImageType(contentType) {
		return nil, "", fmt.Errorf("invalid content type: %s", contentType)
	}

	return imageData, contentType, nil
}

// IsValidImageType checks if content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/webp",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}

// OutputFilename derives an archive entry name from an uploaded filename:
// directories are dropped, the optional prefix is prepended and the
// extension becomes .jpg.
func OutputFilename(original, prefix string) string {
	name := path.Base(filepath.ToSlash(strings.ReplaceAll(original, `\`, "/")))
	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		name = "image"
	}

	return prefix + name + OutputExtension
}

// NameSet hands out unique filenames, suffixing repeats with _2, _3, ...
type NameSet struct {
	seen map[string]int
}

func NewNameSet() *NameSet {
	return &NameSet{seen: make(map[string]int)}
}

func (s *NameSet) Claim(name string) string {
	key := strings.ToLower(name)
	n := s.seen[key]
	s.seen[key] = n + 1
	if n == 0 {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := fmt.Sprintf("%s_%d%s", stem, n+1, ext)
	return s.Claim(candidate)
}
