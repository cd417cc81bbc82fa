package models

// Settings holds the last-used parameter defaults offered to the next
// session.
type Settings struct {
	Opacity       int     `json:"opacity"`
	Scale         float64 `json:"scale"`
	XOffset       int     `json:"x_offset"`
	YOffset       int     `json:"y_offset"`
	Anchor        Anchor  `json:"anchor,omitempty"`
	ResizeEnabled bool    `json:"resize_enabled"`
	ResizeWidth   int     `json:"resize_width"`
}

func DefaultSettings() Settings {
	return Settings{
		Opacity:     180,
		Scale:       0.15,
		ResizeWidth: 1200,
	}
}

func (s Settings) Parameters() WatermarkParameters {
	return WatermarkParameters{
		Opacity: s.Opacity,
		Scale:   s.Scale,
		Placement: Placement{
			Anchor: s.Anchor,
			X:      s.XOffset,
			Y:      s.YOffset,
		},
	}
}

func (s Settings) ResizePolicy() ResizePolicy {
	return ResizePolicy{Enabled: s.ResizeEnabled, TargetWidth: s.ResizeWidth}
}

// FromRun captures the parameters of a finished run.
func FromRun(params WatermarkParameters, resize ResizePolicy, previous Settings) Settings {
	s := Settings{
		Opacity:       params.Opacity,
		Scale:         params.Scale,
		XOffset:       params.Placement.X,
		YOffset:       params.Placement.Y,
		Anchor:        params.Placement.Anchor,
		ResizeEnabled: resize.Enabled,
		ResizeWidth:   previous.ResizeWidth,
	}
	if resize.Enabled {
		s.ResizeWidth = resize.TargetWidth
	}
	return s
}
