package overlay

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontSet owns the parsed typefaces used by the overlay. Faces are created
// per size on demand; truetype face creation is cheap compared to parsing.
type FontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// NewFontSet parses the embedded Go fonts.
func NewFontSet() (*FontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}
	return &FontSet{regular: regular, bold: bold}, nil
}

// Face returns a rendering face at the given pixel size.
func (fs *FontSet) Face(size float64, bold bool) font.Face {
	f := fs.regular
	if bold {
		f = fs.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// Measure returns the advance width of text at the given size in pixels.
func (fs *FontSet) Measure(text string, size float64, bold bool) float64 {
	face := fs.Face(size, bold)
	return float64(font.MeasureString(face, text)) / 64.0
}
