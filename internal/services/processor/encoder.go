package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Encode writes img as JPEG at the processor's quality.
func (p *ImageProcessor) Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

func (p *ImageProcessor) EncodeBytes(img image.Image) ([]byte, error) {
	buffer := &bytes.Buffer{}
	if err := p.Encode(buffer, img); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
