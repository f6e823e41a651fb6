package export

import (
	"context"
	"image"
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostamp/geostamp/pkg/geo"
)

// noisyImage compresses poorly, which is what the budget search needs to
// exercise its fallback rungs.
func noisyImage(w, h int) image.Image {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func TestEncodeFormats(t *testing.T) {
	img := noisyImage(64, 64)

	for _, format := range []Format{FormatJPEG, FormatPNG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(img, format, 0.8)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}

	_, err := Encode(img, Format("bmp"), 0.8)
	assert.Error(t, err)
}

func TestEncodeQualityOrdersSize(t *testing.T) {
	img := noisyImage(128, 128)

	high, err := Encode(img, FormatJPEG, 0.9)
	require.NoError(t, err)
	low, err := Encode(img, FormatJPEG, 0.2)
	require.NoError(t, err)

	assert.Less(t, len(low), len(high))
}

func TestEncodeUnderBudgetFits(t *testing.T) {
	base := noisyImage(800, 600)
	var renders int

	render := func(scale float64) (image.Image, error) {
		renders++
		if scale >= 1.0 {
			return base, nil
		}
		return imaging.Resize(base, int(800*scale), int(600*scale), imaging.Lanczos), nil
	}

	res, err := EncodeUnderBudget(context.Background(), render, FormatJPEG, 500*1024)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(res.Data), 500*1024)
	assert.False(t, res.Oversized)
	assert.GreaterOrEqual(t, renders, 1)
}

func TestEncodeUnderBudgetRerendersEachAttempt(t *testing.T) {
	base := noisyImage(400, 300)
	var scales []float64

	render := func(scale float64) (image.Image, error) {
		scales = append(scales, scale)
		return imaging.Resize(base, int(400*scale), int(300*scale), imaging.Lanczos), nil
	}

	// Absurdly small budget forces the search to both floors.
	res, err := EncodeUnderBudget(context.Background(), render, FormatJPEG, 200)
	require.NoError(t, err)

	assert.True(t, res.Oversized)
	assert.InDelta(t, 0.1, res.Quality, 1e-9)
	assert.InDelta(t, 0.3, res.Scale, 1e-9)
	assert.Greater(t, len(scales), 5, "every retry re-renders")
	assert.InDelta(t, 0.3, scales[len(scales)-1], 1e-9)
}

func TestEncodeUnderBudgetCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	render := func(scale float64) (image.Image, error) {
		return noisyImage(64, 64), nil
	}

	_, err := EncodeUnderBudget(ctx, render, FormatJPEG, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeUnderBudgetRejectsBadBudget(t *testing.T) {
	_, err := EncodeUnderBudget(context.Background(), nil, FormatJPEG, 0)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	zone := time.FixedZone("GMT+07:00", 7*3600)
	dt := geo.DateTimeData{
		Time:      time.Date(2024, 3, 15, 14, 30, 0, 0, zone),
		UTCOffset: "+07:00",
	}

	assert.Equal(t, "20240315_1430ByGPSMapCamera.jpg", Filename(dt, FormatJPEG))
	assert.Equal(t, "20240315_1430ByGPSMapCamera.png", Filename(dt, FormatPNG))
	assert.Equal(t, "20240315_1430ByGPSMapCamera.webp", Filename(dt, FormatWebP))
}
