package overlay

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/staticmap"
	"github.com/geostamp/geostamp/pkg/weather"
)

type stubMap struct {
	err error
}

func (s stubMap) Map(ctx context.Context, lat, lng float64, zoom, w, h int, style staticmap.Style) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img, nil
}

type stubLoader struct {
	err error
}

func (s stubLoader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 220, G: 30, B: 30, A: 255})
		}
	}
	return img, nil
}

func testPhoto(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func testLocation() geo.LocationData {
	return geo.LocationData{
		Lat:         -7.59711,
		Lng:         110.949835,
		District:    "Ngaglik",
		Province:    "Jawa Tengah",
		Country:     "Indonesia",
		CountryCode: "ID",
		Address:     "Jl. Kaliurang Km 5, Ngaglik, Sleman, Daerah Istimewa Yogyakarta",
	}
}

func testDateTime() geo.DateTimeData {
	zone := time.FixedZone("GMT+07:00", 7*3600)
	return geo.DateTimeData{
		Time:      time.Date(2024, 3, 15, 14, 30, 0, 0, zone),
		Timezone:  "Asia/Jakarta",
		UTCOffset: "+07:00",
	}
}

func newTestCompositor(t *testing.T, maps staticmap.Source, loader ImageLoader) *Compositor {
	t.Helper()
	c, err := New(maps, loader)
	require.NoError(t, err)
	return c
}

func TestCompositeDimensionsFollowCrop(t *testing.T) {
	c := newTestCompositor(t, stubMap{}, stubLoader{})

	out, err := c.Composite(context.Background(), testPhoto(900, 300), testLocation(), testDateTime(), Settings{Use24Hour: true, Opacity: 60}, nil)
	require.NoError(t, err)

	ratio := float64(out.Bounds().Dx()) / float64(out.Bounds().Dy())
	assert.InDelta(t, 4.0/3.0, ratio, 0.01)
}

func TestCompositeIdempotent(t *testing.T) {
	c := newTestCompositor(t, stubMap{}, stubLoader{})
	wx := &weather.Data{TempC: 31, TempF: 88, Icon: "04d", Description: "broken clouds"}

	s := Settings{ShowAddress: true, ShowLatLong: true, Use24Hour: true, Opacity: 60}

	a, err := c.Composite(context.Background(), testPhoto(640, 480), testLocation(), testDateTime(), s, wx)
	require.NoError(t, err)
	b, err := c.Composite(context.Background(), testPhoto(640, 480), testLocation(), testDateTime(), s, wx)
	require.NoError(t, err)

	assert.Equal(t, a.Bounds(), b.Bounds())
	assert.Equal(t, a.Pix, b.Pix, "identical inputs must render pixel-identical output")
}

func TestCompositeSurvivesAssetFailures(t *testing.T) {
	c := newTestCompositor(t, stubMap{err: errors.New("tile service down")}, stubLoader{err: errors.New("cdn down")})
	wx := &weather.Data{TempC: 20, TempF: 68, Icon: "01d"}

	out, err := c.Composite(context.Background(), testPhoto(640, 480), testLocation(), testDateTime(), Settings{Opacity: 60}, wx)
	require.NoError(t, err, "decorative asset failures must never abort the composite")
	assert.NotNil(t, out)
}

func TestCompositePreconditions(t *testing.T) {
	c := newTestCompositor(t, stubMap{}, stubLoader{})

	_, err := c.Composite(context.Background(), nil, testLocation(), testDateTime(), Settings{}, nil)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = c.Composite(context.Background(), testPhoto(64, 48), geo.LocationData{}, testDateTime(), Settings{}, nil)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestPreviewDownsamples(t *testing.T) {
	c := newTestCompositor(t, stubMap{}, stubLoader{})

	out, err := c.Preview(context.Background(), testPhoto(4000, 3000), testLocation(), testDateTime(), Settings{Opacity: 60}, nil)
	require.NoError(t, err)

	assert.LessOrEqual(t, out.Bounds().Dx(), 1280)
}

func TestBuildSegmentsHonorsToggles(t *testing.T) {
	loc := testLocation()
	dt := testDateTime()

	minimal := BuildSegments(loc, dt, Settings{Use24Hour: true})
	require.Len(t, minimal, 2, "only title and timestamp when both toggles are off")
	assert.Equal(t, "Ngaglik, Jawa Tengah, Indonesia", minimal[0].Text)
	assert.True(t, minimal[0].Title)

	full := BuildSegments(loc, dt, Settings{ShowAddress: true, ShowLatLong: true, Use24Hour: true})
	require.Len(t, full, 4)
	assert.Equal(t, loc.Address, full[1].Text)
	assert.Contains(t, full[2].Text, "-7.597110, 110.949835")
}

func TestGeometryWeatherColumnCollapses(t *testing.T) {
	s := Settings{Opacity: 60}.withDefaults()

	with := computeGeometry(1600, 1200, s, 150, true)
	without := computeGeometry(1600, 1200, s, 150, false)

	assert.Zero(t, without.weatherW)
	assert.Greater(t, with.weatherW, 0.0)
	assert.Greater(t, without.textW, with.textW, "text column reclaims the weather width")
}

func TestGeometryVariants(t *testing.T) {
	s := Settings{Variant: VariantBar}.withDefaults()
	bar := computeGeometry(1600, 1200, s, 100, false)
	assert.Zero(t, bar.boxX)
	assert.Equal(t, 1600.0, bar.boxW)
	assert.Zero(t, bar.corner)

	s.Variant = VariantCard
	card := computeGeometry(1600, 1200, s, 100, false)
	assert.Greater(t, card.boxX, 0.0)
	assert.Less(t, card.boxW, 1600.0)
	assert.Greater(t, card.corner, 0.0)
}
