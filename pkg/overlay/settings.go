package overlay

import (
	"github.com/geostamp/geostamp/config"
	"github.com/geostamp/geostamp/pkg/staticmap"
)

// Variant selects the overall overlay arrangement. Both variants share one
// geometry computation; only box shapes and badge placement differ.
type Variant int

const (
	// VariantBar draws a single full-width bottom bar.
	VariantBar Variant = iota
	// VariantCard draws a rounded info box with a separate rounded
	// watermark badge above it.
	VariantCard
)

// Settings are the caller-facing style toggles ("Pro settings").
type Settings struct {
	ShowLatLong bool
	ShowAddress bool
	Opacity     int    // panel background alpha, 0-100 percent
	Use24Hour   bool   // display clock format
	Watermark   string // badge text; empty means config.DefaultWatermark
	MapStyle    staticmap.Style
	SmartCrop   bool // opt-in subject-aware crop placement
	Variant     Variant
	Layout      *LayoutSettings // nil means defaults
}

// LayoutSettings parameterize the box geometry. All pixel values are at the
// reference width and scale linearly with the rendered width.
type LayoutSettings struct {
	InfoBoxHeightRatio float64 // info box height as a fraction of image height
	MapWidthMultiplier float64 // mini-map width = box content height * this
	TitleFontSize      float64
	BodyFontSize       float64
	LineHeight         float64
	TitleGap           float64 // gap between title block and body lines
	Padding            float64
	Margin             float64
	MaxScale           float64 // auto-fit upper bound
}

// refWidth is the width all LayoutSettings pixel values are specified at.
const refWidth = 1600.0

// DefaultLayoutSettings returns the documented defaults.
func DefaultLayoutSettings() *LayoutSettings {
	return &LayoutSettings{
		InfoBoxHeightRatio: 0.22,
		MapWidthMultiplier: 1.0,
		TitleFontSize:      34,
		BodyFontSize:       24,
		LineHeight:         1.25,
		TitleGap:           10,
		Padding:            24,
		Margin:             16,
		MaxScale:           2.5,
	}
}

// withDefaults fills unset fields so the draw path never branches on nil.
func (s Settings) withDefaults() Settings {
	if s.Layout == nil {
		s.Layout = DefaultLayoutSettings()
	}
	if s.Watermark == "" {
		s.Watermark = config.DefaultWatermark
	}
	if s.MapStyle == "" {
		s.MapStyle = staticmap.StyleRoadmap
	}
	if s.Opacity < 0 {
		s.Opacity = 0
	}
	if s.Opacity > 100 {
		s.Opacity = 100
	}
	return s
}
