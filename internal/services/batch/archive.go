package batch

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/phambaophuc/image-watermark/internal/models"
)

// Archive packs the successful entries of result into a single ZIP.
func Archive(result *models.BatchResult) ([]byte, error) {
	buffer := &bytes.Buffer{}
	zw := zip.NewWriter(buffer)

	modified := result.ProcessedAt
	if modified.IsZero() {
		modified = time.Now()
	}

	for _, entry := range result.Entries {
		header := &zip.FileHeader{
			Name:     entry.Filename,
			Method:   zip.Deflate,
			Modified: modified,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", entry.Filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buffer.Bytes(), nil
}
