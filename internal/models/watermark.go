package models

type Anchor string

const (
	AnchorNone        Anchor = ""
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
	AnchorTopLeft     Anchor = "top-left"
)

// Valid reports whether a is one of the named anchors or empty.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorNone, AnchorBottomRight, AnchorCenter, AnchorTopLeft:
		return true
	}
	return false
}

// Placement is either a named anchor or, when Anchor is empty, an explicit
// top-left pixel offset on the base image.
type Placement struct {
	Anchor Anchor `json:"anchor,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type WatermarkParameters struct {
	Opacity   int       `json:"opacity"`
	Scale     float64   `json:"scale"`
	Placement Placement `json:"placement"`
}

type ResizePolicy struct {
	Enabled     bool `json:"enabled"`
	TargetWidth int  `json:"target_width"`
}

// WatermarkRequest is the multipart form accepted by the watermark endpoints.
// Pointer fields distinguish "absent" from zero so stored defaults can fill
// the gaps.
type WatermarkRequest struct {
	Opacity      *int     `form:"opacity" binding:"omitempty,min=0,max=255"`
	Scale        *float64 `form:"scale" binding:"omitempty,min=0.05,max=0.5"`
	Anchor       *string  `form:"anchor" binding:"omitempty,oneof=none bottom-right center top-left"`
	XOffset      *int     `form:"x_offset" binding:"omitempty,min=-65536,max=65536"`
	YOffset      *int     `form:"y_offset" binding:"omitempty,min=-65536,max=65536"`
	ResizeWidth  *int     `form:"resize_width" binding:"omitempty,min=0,max=3000"`
	WatermarkURL string   `form:"watermark_url" binding:"omitempty,url"`
	Guide        bool     `form:"guide"`
}
