package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const DefaultQuality = 95

type ImageProcessor struct {
	quality int
}

func NewImageProcessor(quality int) *ImageProcessor {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &ImageProcessor{quality: quality}
}

// Decode reads a PNG, JPEG or WebP image and applies its EXIF orientation.
func (p *ImageProcessor) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func (p *ImageProcessor) DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	return p.Decode(bytes.NewReader(data))
}
