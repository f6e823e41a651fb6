// Package staticmap resolves the mini-map inset image for the overlay. The
// compositor only depends on the Source interface; which provider backs it is
// wiring decided by the caller.
package staticmap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
)

// Style selects the base map rendering.
type Style string

const (
	StyleRoadmap   Style = "roadmap"
	StyleSatellite Style = "satellite"
)

// ErrNoAPIKey is returned by providers that need a provisioned credential
// when none was configured. This is a documented failure mode; the
// compositor degrades to a placeholder panel.
var ErrNoAPIKey = errors.New("static map provider requires an API key")

// Source produces a map image centered on a coordinate.
type Source interface {
	// Map renders or fetches a w x h map centered on (lat, lng).
	Map(ctx context.Context, lat, lng float64, zoom, w, h int, style Style) (image.Image, error)
}

// ImageLoader is the slice of the asset loader the URL-backed provider
// needs.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) (image.Image, error)
}

// GoogleProvider fetches tiles from the Google Static Maps API.
type GoogleProvider struct {
	APIKey  string
	BaseURL string // override for tests; default production endpoint
	Loader  ImageLoader
}

const googleStaticMapURL = "https://maps.googleapis.com/maps/api/staticmap"

// TileURL builds the provider request URL without fetching it.
func (p *GoogleProvider) TileURL(lat, lng float64, zoom, w, h int, style Style) (string, error) {
	if p.APIKey == "" {
		return "", ErrNoAPIKey
	}

	base := p.BaseURL
	if base == "" {
		base = googleStaticMapURL
	}

	q := url.Values{}
	q.Set("center", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("zoom", fmt.Sprint(zoom))
	q.Set("size", fmt.Sprintf("%dx%d", w, h))
	q.Set("maptype", string(style))
	q.Set("scale", "1")
	q.Set("key", p.APIKey)

	return base + "?" + q.Encode(), nil
}

// Map fetches the static map image via the asset loader.
func (p *GoogleProvider) Map(ctx context.Context, lat, lng float64, zoom, w, h int, style Style) (image.Image, error) {
	u, err := p.TileURL(lat, lng, zoom, w, h, style)
	if err != nil {
		return nil, err
	}
	return p.Loader.LoadImage(ctx, u)
}
