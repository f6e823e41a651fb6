package cmd

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/geostamp/geostamp/pkg/export"
	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/overlay"
	"github.com/geostamp/geostamp/pkg/weather"
)

// openPhoto decodes the source image, honoring EXIF orientation.
func openPhoto(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return img, nil
}

// renderAtScale produces the budget-search render function. Every retry runs
// the full composite at the reduced size because overlay sizing follows the
// output width.
func renderAtScale(ctx context.Context, compositor *overlay.Compositor, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style overlay.Settings, wx *weather.Data) export.RenderFunc {
	return func(scale float64) (image.Image, error) {
		src := photo
		if scale < 1.0 {
			w := int(float64(photo.Bounds().Dx()) * scale)
			if w < 1 {
				w = 1
			}
			src = imaging.Resize(photo, w, 0, imaging.Lanczos)
		}
		return compositor.Composite(ctx, src, loc, dt, style, wx)
	}
}
