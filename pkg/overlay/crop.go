package overlay

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// ErrBadDimensions is returned for non-positive source dimensions. This is a
// caller error, not a degradable condition.
var ErrBadDimensions = errors.New("source dimensions must be positive")

// CropRect pairs the source window with the destination canvas. The
// destination always starts at the origin and matches the cropped source
// size; scaling happens later in the pipeline.
type CropRect struct {
	Src image.Rectangle
	Dst image.Rectangle
}

// ComputeCrop returns the centered crop window enforcing 4:3 for landscape
// sources and 3:4 for portrait ones. A source already at the target ratio is
// returned uncropped.
func ComputeCrop(srcW, srcH int) (CropRect, error) {
	if srcW <= 0 || srcH <= 0 {
		return CropRect{}, ErrBadDimensions
	}

	target := 4.0 / 3.0
	if srcW < srcH {
		target = 3.0 / 4.0
	}

	w, h := srcW, srcH
	ratio := float64(srcW) / float64(srcH)
	switch {
	case ratio > target:
		// Too wide: trim width symmetrically.
		w = int(math.Round(float64(srcH) * target))
	case ratio < target:
		// Too tall: trim height symmetrically.
		h = int(math.Round(float64(srcW) / target))
	}

	x := (srcW - w) / 2
	y := (srcH - h) / 2

	return CropRect{
		Src: image.Rect(x, y, x+w, y+h),
		Dst: image.Rect(0, 0, w, h),
	}, nil
}

// ComputeCropSmart keeps the window size ComputeCrop would pick but centers
// it on the subject found by the crop analyzer, clamped to the image bounds.
// Analysis failures fall back to the centered window.
func ComputeCropSmart(img image.Image) (CropRect, error) {
	bounds := img.Bounds()
	crop, err := ComputeCrop(bounds.Dx(), bounds.Dy())
	if err != nil {
		return CropRect{}, err
	}

	analyzer := smartcrop.NewAnalyzer(&resizer{})
	best, err := analyzer.FindBestCrop(img, crop.Src.Dx(), crop.Src.Dy())
	if err != nil {
		return crop, nil
	}

	w, h := crop.Src.Dx(), crop.Src.Dy()
	cx := best.Min.X + best.Dx()/2
	cy := best.Min.Y + best.Dy()/2

	x := clamp(cx-w/2, 0, bounds.Dx()-w)
	y := clamp(cy-h/2, 0, bounds.Dy()-h)

	crop.Src = image.Rect(x, y, x+w, y+h)
	return crop, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// resizer adapts imaging for the crop analyzer.
type resizer struct{}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), imaging.Lanczos)
}
