package processor

import (
	"image"

	"github.com/fogleman/gg"
)

const guideLineWidth = 2

// DrawPlacementGuide outlines rect on a copy of img. Used for previews only.
func (p *ImageProcessor) DrawPlacementGuide(img image.Image, rect image.Rectangle) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetRGBA(1, 0, 0, 0.8)
	dc.SetLineWidth(guideLineWidth)
	dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
	dc.Stroke()
	return dc.Image()
}
