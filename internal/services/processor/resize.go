package processor

import (
	"image"

	"github.com/disintegration/imaging"
)

// ResizeToWidth scales img to width pixels, keeping its aspect ratio.
func (p *ImageProcessor) ResizeToWidth(img image.Image, width int) image.Image {
	width = max(1, width)
	if img.Bounds().Dx() == width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}
