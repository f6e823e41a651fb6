package overlay

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/geostamp/geostamp/config"
	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/staticmap"
	"github.com/geostamp/geostamp/pkg/weather"
	"github.com/geostamp/geostamp/util/log"
)

// Precondition violations. These propagate; everything decorative degrades
// in place instead.
var (
	ErrNoImage    = errors.New("composite requires a decoded photo")
	ErrNoLocation = errors.New("composite requires a resolved location")
)

// ImageLoader is the slice of the asset loader the compositor needs.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) (image.Image, error)
}

// mapCropFactor over-zooms the fetched map before center-cropping it into
// its box, pushing the provider's attribution strip out of frame.
const mapCropFactor = 1.3

// Compositor draws the full geotag overlay onto a cropped photo. One
// instance is safe for concurrent composites; each call renders into its own
// surface.
type Compositor struct {
	maps   staticmap.Source
	loader ImageLoader
	fonts  *FontSet
}

// New creates a Compositor.
func New(maps staticmap.Source, loader ImageLoader) (*Compositor, error) {
	fonts, err := NewFontSet()
	if err != nil {
		return nil, err
	}
	return &Compositor{maps: maps, loader: loader, fonts: fonts}, nil
}

// Fonts exposes the compositor's font set for layout previews.
func (c *Compositor) Fonts() *FontSet {
	return c.fonts
}

// Composite renders the overlay at the photo's native cropped resolution.
func (c *Compositor) Composite(ctx context.Context, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style Settings, wx *weather.Data) (*image.RGBA, error) {
	if photo == nil {
		return nil, ErrNoImage
	}
	if loc.IsZero() {
		return nil, ErrNoLocation
	}

	s := style.withDefaults()
	dt.TwelveHour = !s.Use24Hour

	bounds := photo.Bounds()
	crop, err := c.cropWindow(photo, bounds, s)
	if err != nil {
		return nil, err
	}

	cropped := imaging.Crop(photo, crop.Src)
	w, h := crop.Dst.Dx(), crop.Dst.Dy()

	dc := gg.NewContext(w, h)
	dc.DrawImage(cropped, 0, 0)

	segments := BuildSegments(loc, dt, s)
	badgeTextW := c.fonts.Measure(s.Watermark, badgeFontSize(w), true)
	g := computeGeometry(w, h, s, badgeTextW, wx != nil)

	assets := c.fetchAssets(ctx, loc, s, wx, g)

	c.drawPanels(dc, g, s)
	c.drawMap(dc, g, s, assets.mapImg)
	c.drawText(dc, g, s, segments, assets.flagImg)
	c.drawBadge(dc, g, s)
	c.drawWeather(dc, g, wx, assets.weatherImg)

	return dc.Image().(*image.RGBA), nil
}

// Preview downsamples the photo to the display width and runs the same
// composite path.
func (c *Compositor) Preview(ctx context.Context, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style Settings, wx *weather.Data) (*image.RGBA, error) {
	if photo == nil {
		return nil, ErrNoImage
	}
	if photo.Bounds().Dx() > config.PreviewWidth {
		photo = imaging.Resize(photo, config.PreviewWidth, 0, imaging.Lanczos)
	}
	return c.Composite(ctx, photo, loc, dt, style, wx)
}

func (c *Compositor) cropWindow(photo image.Image, bounds image.Rectangle, s Settings) (CropRect, error) {
	if s.SmartCrop {
		return ComputeCropSmart(photo)
	}
	return ComputeCrop(bounds.Dx(), bounds.Dy())
}

// BuildSegments assembles the text block per the style toggles. Hidden lines
// are omitted entirely so the layout reclaims their height.
func BuildSegments(loc geo.LocationData, dt geo.DateTimeData, s Settings) []Segment {
	s = s.withDefaults()
	ls := s.Layout

	segments := []Segment{{
		Text:     loc.Title(),
		FontSize: ls.TitleFontSize,
		Bold:     true,
		Title:    true,
		FlagRoom: loc.CountryCode != "",
	}}

	if s.ShowAddress && loc.Address != "" {
		segments = append(segments, Segment{Text: loc.Address, FontSize: ls.BodyFontSize})
	}
	if s.ShowLatLong {
		segments = append(segments, Segment{
			Text:     "Lat " + geo.FormatCoordinates(loc.Lat, loc.Lng),
			FontSize: ls.BodyFontSize,
		})
	}
	segments = append(segments, Segment{Text: dt.Format(), FontSize: ls.BodyFontSize})

	return segments
}

type fetchedAssets struct {
	mapImg     image.Image
	flagImg    image.Image
	weatherImg image.Image
}

// fetchAssets loads the decorative images in parallel. Failures are logged
// and left nil; the draw helpers substitute placeholders.
func (c *Compositor) fetchAssets(ctx context.Context, loc geo.LocationData, s Settings, wx *weather.Data, g geometry) fetchedAssets {
	var assets fetchedAssets

	// Fetch at device-independent size; the draw step scales up.
	deviceScale := math.Max(g.rs, 1.0)
	reqW := int(g.mapW * mapCropFactor / deviceScale)
	reqH := int(g.mapH * mapCropFactor / deviceScale)
	zoom := config.MapZoomBar
	if s.Variant == VariantCard {
		zoom = config.MapZoomCard
	}

	var eg errgroup.Group
	eg.Go(func() error {
		img, err := c.maps.Map(ctx, loc.Lat, loc.Lng, zoom, reqW, reqH, s.MapStyle)
		if err != nil {
			log.Printf("mini-map unavailable: %v", err)
			return nil
		}
		assets.mapImg = img
		return nil
	})

	if loc.CountryCode != "" {
		eg.Go(func() error {
			url, err := geo.FlagIconURL(loc.CountryCode)
			if err == nil {
				assets.flagImg, err = c.loader.LoadImage(ctx, url)
			}
			if err != nil {
				log.Debugf("flag icon unavailable: %v", err)
			}
			return nil
		})
	}

	if url := wx.IconURL(); url != "" {
		eg.Go(func() error {
			img, err := c.loader.LoadImage(ctx, url)
			if err != nil {
				log.Debugf("weather icon unavailable: %v", err)
				return nil
			}
			assets.weatherImg = img
			return nil
		})
	}

	eg.Wait()
	return assets
}

// drawPanels paints the semi-transparent background(s).
func (c *Compositor) drawPanels(dc *gg.Context, g geometry, s Settings) {
	alpha := float64(s.Opacity) / 100.0
	dc.SetRGBA(0, 0, 0, alpha)
	if g.corner > 0 {
		dc.DrawRoundedRectangle(g.boxX, g.boxY, g.boxW, g.boxH, g.corner)
	} else {
		dc.DrawRectangle(g.boxX, g.boxY, g.boxW, g.boxH)
	}
	dc.Fill()
}

// drawMap places the mini-map, clipped and over-zoom cropped, with the
// provider wordmark redrawn on top. A missing map degrades to a labeled
// placeholder panel.
func (c *Compositor) drawMap(dc *gg.Context, g geometry, s Settings, mapImg image.Image) {
	w, h := int(g.mapW), int(g.mapH)
	if w <= 0 || h <= 0 {
		return
	}

	radius := 10 * g.rs
	if s.Variant == VariantBar {
		radius = 4 * g.rs
	}

	dc.Push()
	dc.DrawRoundedRectangle(g.mapX, g.mapY, g.mapW, g.mapH, radius)
	dc.Clip()

	if mapImg == nil {
		dc.SetRGBA(0.25, 0.27, 0.3, 1)
		dc.DrawRectangle(g.mapX, g.mapY, g.mapW, g.mapH)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.SetFontFace(c.fonts.Face(12*g.rs, false))
		dc.DrawStringAnchored("Map unavailable", g.mapX+g.mapW/2, g.mapY+g.mapH/2, 0.5, 0.5)
	} else {
		zoomed := imaging.Resize(mapImg, int(g.mapW*mapCropFactor), int(g.mapH*mapCropFactor), imaging.Lanczos)
		fitted := imaging.CropCenter(zoomed, w, h)
		dc.DrawImage(fitted, int(g.mapX), int(g.mapY))
		drawWordmark(dc, c.fonts, g.mapX+6*g.rs, g.mapY+g.mapH-6*g.rs, 13*g.rs, s.MapStyle)
	}
	dc.ResetClip()
	dc.Pop()
}

// drawText lays out and paints the info block, vertically centered, with the
// inline flag after the title's last line when available.
func (c *Compositor) drawText(dc *gg.Context, g geometry, s Settings, segments []Segment, flagImg image.Image) {
	ls := s.Layout
	cfg := DefaultSearchConfig()
	cfg.MaxScale = ls.MaxScale
	cfg.LineHeight = ls.LineHeight
	cfg.SegmentGap = ls.TitleGap * g.rs
	res := c.fonts.Layout(scaledSegments(segments, g.rs), g.textW, g.textH, cfg)
	if len(res.Segments) == 0 {
		return
	}

	y := g.textY
	if res.Height < g.textH {
		y += (g.textH - res.Height) / 2
	}

	dc.SetRGB(1, 1, 1)
	for i, seg := range res.Segments {
		if i > 0 {
			y += cfg.SegmentGap
		}
		dc.SetFontFace(c.fonts.Face(seg.FontSize, seg.Bold))
		for j, line := range seg.Lines {
			y += seg.FontSize * cfg.LineHeight
			baseline := y - seg.FontSize*(cfg.LineHeight-1)/2
			dc.DrawString(line, g.textX, baseline)

			lastLine := j == len(seg.Lines)-1
			if lastLine && seg.Title && seg.FlagRoom && flagImg != nil {
				c.drawFlag(dc, flagImg, g.textX+c.fonts.Measure(line, seg.FontSize, seg.Bold), baseline, seg.FontSize)
				// Reset fill color, the flag draw leaves state behind.
				dc.SetRGB(1, 1, 1)
			}
		}
	}
}

// drawFlag draws the country flag inline after a text line, anchored to the
// baseline.
func (c *Compositor) drawFlag(dc *gg.Context, flagImg image.Image, x, baseline, fontSize float64) {
	size := int(fontSize * 1.1)
	if size <= 0 {
		return
	}
	fitted := imaging.Fit(flagImg, size, size, imaging.Lanczos)
	dc.DrawImage(fitted, int(x+fontSize*0.3), int(baseline)-fitted.Bounds().Dy())
}

func badgeFontSize(w int) float64 {
	return 20 * float64(w) / refWidth
}

// drawBadge paints the watermark chip: rounded background, a vector location
// pin, and the watermark text. The pin is drawn locally so the badge never
// depends on a remote asset.
func (c *Compositor) drawBadge(dc *gg.Context, g geometry, s Settings) {
	alpha := float64(s.Opacity) / 100.0
	dc.SetRGBA(0, 0, 0, alpha)
	dc.DrawRoundedRectangle(g.badgeX, g.badgeY, g.badgeW, g.badgeH, g.badgeH/2)
	dc.Fill()

	// Location pin: disc with a hole, tail down.
	pinR := g.badgeH * 0.22
	pinX := g.badgeX + g.badgeH/2
	pinY := g.badgeY + g.badgeH*0.38
	dc.SetRGB(0.91, 0.26, 0.21)
	dc.DrawCircle(pinX, pinY, pinR)
	dc.Fill()
	dc.MoveTo(pinX-pinR*0.85, pinY+pinR*0.4)
	dc.LineTo(pinX+pinR*0.85, pinY+pinR*0.4)
	dc.LineTo(pinX, g.badgeY+g.badgeH*0.78)
	dc.ClosePath()
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(pinX, pinY, pinR*0.4)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(c.fonts.Face(badgeFontSize(int(g.w)), true))
	dc.DrawStringAnchored(s.Watermark, g.badgeX+g.badgeH, g.badgeY+g.badgeH/2, 0, 0.35)
}

// drawWeather paints the right-hand weather block: condition icon above the
// temperature line. Without weather data the column has zero width and
// nothing is drawn.
func (c *Compositor) drawWeather(dc *gg.Context, g geometry, wx *weather.Data, icon image.Image) {
	if wx == nil || g.weatherW <= 0 {
		return
	}

	centerX := g.weatherX + g.weatherW/2
	iconSide := int(g.weatherW * 0.55)

	if icon != nil {
		fitted := imaging.Fit(icon, iconSide, iconSide, imaging.Lanczos)
		dc.DrawImageAnchored(fitted, int(centerX), int(g.boxY+g.boxH*0.38), 0.5, 0.5)
	} else if wx.Description != "" {
		dc.SetRGB(1, 1, 1)
		dc.SetFontFace(c.fonts.Face(14*g.rs, false))
		dc.DrawStringAnchored(wx.Description, centerX, g.boxY+g.boxH*0.38, 0.5, 0.5)
	}

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(c.fonts.Face(18*g.rs, true))
	dc.DrawStringAnchored(wx.Label(), centerX, g.boxY+g.boxH*0.72, 0.5, 0.5)
}

// scaledSegments applies the render-size scale to nominal font sizes so the
// auto-fit search runs in output pixels.
func scaledSegments(segments []Segment, rs float64) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		seg.FontSize *= rs
		out[i] = seg
	}
	return out
}
