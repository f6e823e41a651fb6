package overlay

import (
	"image/color"

	"github.com/fogleman/gg"

	"github.com/geostamp/geostamp/pkg/staticmap"
)

// The mini-map hides the provider's attribution strip by over-zoom cropping,
// so the wordmark is redrawn on top in the provider's styling: per-letter
// brand colors on road maps, white with a dark outline on satellite.

const wordmarkText = "Google"

var wordmarkColors = []color.RGBA{
	{66, 133, 244, 255}, // G blue
	{234, 67, 53, 255},  // o red
	{251, 188, 5, 255},  // o yellow
	{66, 133, 244, 255}, // g blue
	{52, 168, 83, 255},  // l green
	{234, 67, 53, 255},  // e red
}

func drawWordmark(dc *gg.Context, fs *FontSet, x, y, size float64, style staticmap.Style) {
	face := fs.Face(size, true)
	dc.SetFontFace(face)

	if style == staticmap.StyleSatellite {
		// Outline first, a one-pixel ring of offsets.
		dc.SetRGBA(0, 0, 0, 0.85)
		for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			dc.DrawString(wordmarkText, x+d[0], y+d[1])
		}
		dc.SetRGB(1, 1, 1)
		dc.DrawString(wordmarkText, x, y)
		return
	}

	cx := x
	for i, r := range wordmarkText {
		letter := string(r)
		dc.SetColor(wordmarkColors[i%len(wordmarkColors)])
		dc.DrawString(letter, cx, y)
		cx += fs.Measure(letter, size, true)
	}
}
