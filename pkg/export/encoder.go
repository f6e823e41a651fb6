// Package export turns a composited surface into encoded bytes, either
// directly or under a byte budget by trading quality against scale.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"

	"github.com/geostamp/geostamp/util/log"
)

// Format is the encoded output type.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// Budget-search bounds. Quality floors at qualityFloor while scale still has
// room, and may fall to qualityMin once scale bottoms out.
const (
	startQuality = 0.8
	startScale   = 1.0
	qualityFloor = 0.3
	qualityMin   = 0.1
	scaleFloor   = 0.3
	searchStep   = 0.1
)

// Encode performs a single-pass encode with no size constraint. Quality is
// 0..1 and is ignored for PNG.
func Encode(img image.Image, format Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)})
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality * 100)})
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func jpegQuality(q float64) int {
	if q <= 0 {
		return 1
	}
	if q > 1 {
		q = 1
	}
	return int(q * 100)
}

// RenderFunc re-renders the full composite at the given scale (1.0 = native
// cropped resolution). Each budget iteration calls it again because text and
// asset sizing are scale-relative; re-encoding the same pixels would not
// reproduce what a smaller render actually looks like.
type RenderFunc func(scale float64) (image.Image, error)

// Result is the outcome of a size-constrained encode.
type Result struct {
	Data    []byte
	Quality float64
	Scale   float64
	// Oversized is set when the floors were reached and the buffer still
	// exceeds the budget. This is a successful best-effort result, not an
	// error.
	Oversized bool
}

// EncodeUnderBudget searches quality, then scale, downward until the encoded
// size fits budgetBytes. The loop is hard-capped by the floors and checks
// ctx between iterations, so it always terminates.
func EncodeUnderBudget(ctx context.Context, render RenderFunc, format Format, budgetBytes int) (Result, error) {
	if budgetBytes <= 0 {
		return Result{}, fmt.Errorf("budget must be positive, got %d", budgetBytes)
	}

	quality := startQuality
	scale := startScale

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		img, err := render(scale)
		if err != nil {
			return Result{}, fmt.Errorf("re-rendering at scale %.1f: %w", scale, err)
		}

		data, err := Encode(img, format, quality)
		if err != nil {
			return Result{}, err
		}

		if len(data) <= budgetBytes {
			return Result{Data: data, Quality: quality, Scale: scale}, nil
		}

		log.Debugf("encode over budget: %d > %d at q=%.1f s=%.1f", len(data), budgetBytes, quality, scale)

		switch {
		case quality > qualityFloor+1e-9:
			quality -= searchStep
		case scale > scaleFloor+1e-9:
			scale -= searchStep
		case quality > qualityMin+1e-9:
			quality -= searchStep
		default:
			// Both floors reached; hand back the smallest attempt.
			return Result{Data: data, Quality: quality, Scale: scale, Oversized: true}, nil
		}
	}
}
