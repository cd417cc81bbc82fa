package processor

import (
	"github.com/phambaophuc/image-watermark/internal/models"
)

const (
	MaxOpacity     = 255
	MaxOffset      = 1 << 16
	MinResizeWidth = 100
	MaxResizeWidth = 3000
)

// ValidateParameters rejects watermark parameters outside their documented
// range before any image is touched.
func (p *ImageProcessor) ValidateParameters(params models.WatermarkParameters) error {
	if params.Opacity < 0 || params.Opacity > MaxOpacity {
		return &ParameterError{Name: "opacity", Value: params.Opacity, Reason: "must be between 0 and 255"}
	}

	if !(params.Scale > 0 && params.Scale <= 1) {
		return &ParameterError{Name: "scale", Value: params.Scale, Reason: "must be in (0, 1]"}
	}

	if !params.Placement.Anchor.Valid() {
		return &ParameterError{Name: "anchor", Value: params.Placement.Anchor, Reason: "must be one of bottom-right, center, top-left"}
	}

	if abs(params.Placement.X) > MaxOffset {
		return &ParameterError{Name: "x_offset", Value: params.Placement.X, Reason: "out of range"}
	}
	if abs(params.Placement.Y) > MaxOffset {
		return &ParameterError{Name: "y_offset", Value: params.Placement.Y, Reason: "out of range"}
	}

	return nil
}

func (p *ImageProcessor) ValidateResize(policy models.ResizePolicy) error {
	if !policy.Enabled {
		return nil
	}
	if policy.TargetWidth < MinResizeWidth || policy.TargetWidth > MaxResizeWidth {
		return &ParameterError{Name: "resize_width", Value: policy.TargetWidth, Reason: "must be between 100 and 3000"}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
