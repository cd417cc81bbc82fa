package processor

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-watermark/internal/models"
	"golang.org/x/image/draw"
)

const WatermarkMargin = 20

var flattenBackground = color.White

// Composite overlays watermark onto a copy of base and returns an opaque
// image with the dimensions of base. Neither input is modified.
func (p *ImageProcessor) Composite(base, watermark image.Image, params models.WatermarkParameters) (*image.RGBA, error) {
	if err := p.ValidateParameters(params); err != nil {
		return nil, err
	}

	mark, err := p.prepareWatermark(base, watermark, params)
	if err != nil {
		return nil, err
	}

	canvas := imaging.Clone(base)
	bounds := canvas.Bounds()
	pos := p.resolvePlacement(bounds.Size(), mark.Bounds().Size(), params.Placement)

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(flattenBackground), image.Point{}, draw.Src)
	draw.Draw(out, bounds, canvas, bounds.Min, draw.Over)

	// Offsets outside the canvas are clipped by Draw.
	target := image.Rectangle{Min: pos, Max: pos.Add(mark.Bounds().Size())}
	draw.Draw(out, target, mark, image.Point{}, draw.Over)

	return out, nil
}

// WatermarkRect reports where the watermark lands on base for params.
func (p *ImageProcessor) WatermarkRect(base, watermark image.Image, params models.WatermarkParameters) (image.Rectangle, error) {
	w, h, err := p.scaledSize(base.Bounds().Dx(), watermark, params.Scale)
	if err != nil {
		return image.Rectangle{}, err
	}
	markSize := image.Pt(w, h)
	pos := p.resolvePlacement(base.Bounds().Size(), markSize, params.Placement)
	return image.Rectangle{Min: pos, Max: pos.Add(markSize)}, nil
}

// prepareWatermark resamples the watermark relative to the base width and
// scales its alpha channel by opacity/255.
func (p *ImageProcessor) prepareWatermark(base, watermark image.Image, params models.WatermarkParameters) (*image.NRGBA, error) {
	w, h, err := p.scaledSize(base.Bounds().Dx(), watermark, params.Scale)
	if err != nil {
		return nil, err
	}

	mark := imaging.Resize(watermark, w, h, imaging.Lanczos)
	for i := 3; i < len(mark.Pix); i += 4 {
		mark.Pix[i] = uint8(int(mark.Pix[i]) * params.Opacity / MaxOpacity)
	}
	return mark, nil
}

// scaledSize returns the watermark size for a base of the given width:
// width is round(baseWidth*scale) and height keeps the watermark aspect ratio.
func (p *ImageProcessor) scaledSize(baseWidth int, watermark image.Image, scale float64) (int, int, error) {
	wb := watermark.Bounds()
	if wb.Dx() <= 0 || wb.Dy() <= 0 {
		return 0, 0, fmt.Errorf("%w: zero-sized watermark %dx%d", ErrInvalidWatermark, wb.Dx(), wb.Dy())
	}

	w := max(1, int(math.Round(float64(baseWidth)*scale)))
	h := max(1, int(math.Round(float64(wb.Dy())*float64(w)/float64(wb.Dx()))))
	return w, h, nil
}

func (p *ImageProcessor) resolvePlacement(canvas, mark image.Point, placement models.Placement) image.Point {
	var pos image.Point
	switch placement.Anchor {
	case models.AnchorTopLeft:
		pos = image.Pt(WatermarkMargin, WatermarkMargin)
	case models.AnchorBottomRight:
		pos = image.Pt(canvas.X-mark.X-WatermarkMargin, canvas.Y-mark.Y-WatermarkMargin)
	case models.AnchorCenter:
		pos = image.Pt((canvas.X-mark.X)/2, (canvas.Y-mark.Y)/2)
	default:
		return image.Pt(placement.X, placement.Y)
	}

	// Anchors keep the watermark on the canvas even when it barely fits.
	return image.Pt(max(0, pos.X), max(0, pos.Y))
}
