package staticmap

import (
	"context"
	"fmt"
	"image"

	sm "github.com/flopp/go-staticmaps"
	"github.com/golang/geo/s2"
)

// TileRenderer is the keyless fallback Source: it stitches the mini-map from
// OSM raster tiles instead of calling a credentialed static-map API.
// Satellite style has no free tile set, so it falls back to the road map.
type TileRenderer struct{}

// Map renders a w x h map centered on (lat, lng) from public tiles.
func (TileRenderer) Map(ctx context.Context, lat, lng float64, zoom, w, h int, style Style) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := sm.NewContext()
	c.SetSize(w, h)
	c.SetCenter(s2.LatLngFromDegrees(lat, lng))
	c.SetZoom(zoom)

	img, err := c.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering tile map: %w", err)
	}
	return img, nil
}
