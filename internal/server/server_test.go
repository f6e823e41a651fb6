package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/overlay"
	"github.com/geostamp/geostamp/pkg/weather"
)

type fakeCompositor struct {
	composites int
	previews   int
}

func (f *fakeCompositor) render(photo image.Image) *image.RGBA {
	b := photo.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, photo.At(x, y))
		}
	}
	return out
}

func (f *fakeCompositor) Composite(ctx context.Context, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style overlay.Settings, wx *weather.Data) (*image.RGBA, error) {
	if photo == nil {
		return nil, overlay.ErrNoImage
	}
	if loc.IsZero() {
		return nil, overlay.ErrNoLocation
	}
	f.composites++
	return f.render(photo), nil
}

func (f *fakeCompositor) Preview(ctx context.Context, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style overlay.Settings, wx *weather.Data) (*image.RGBA, error) {
	f.previews++
	return f.Composite(ctx, photo, loc, dt, style, wx)
}

func multipartBody(t *testing.T, options map[string]interface{}) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 13)
	}
	img.Set(0, 0, color.RGBA{A: 255})

	var photoBuf bytes.Buffer
	require.NoError(t, png.Encode(&photoBuf, img))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	opts, err := json.Marshal(options)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("options", string(opts)))

	part, err := mw.CreateFormFile("photo", "photo.png")
	require.NoError(t, err)
	_, err = io.Copy(part, &photoBuf)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func defaultOptions() map[string]interface{} {
	return map[string]interface{}{
		"location": map[string]interface{}{
			"lat": -7.59711, "lng": 110.949835,
			"district": "Ngaglik", "province": "Jawa Tengah",
			"country": "Indonesia", "country_code": "ID",
		},
		"datetime": map[string]interface{}{
			"time":       time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC).Format(time.RFC3339),
			"utc_offset": "+07:00",
		},
		"style": map[string]interface{}{"opacity": 60, "use_24h": true},
	}
}

func TestHealth(t *testing.T) {
	s := New(&fakeCompositor{}, "test")
	srv := httptest.NewServer(s.Routes(5 * time.Second))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestRenderReturnsImage(t *testing.T) {
	fc := &fakeCompositor{}
	s := New(fc, "test")
	srv := httptest.NewServer(s.Routes(5 * time.Second))
	defer srv.Close()

	body, ct := multipartBody(t, defaultOptions())
	resp, err := http.Post(srv.URL+"/api/v1/render", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "20240315_2130ByGPSMapCamera.jpg")
	assert.Equal(t, 1, fc.composites)
}

func TestRenderPreviewPath(t *testing.T) {
	fc := &fakeCompositor{}
	s := New(fc, "test")
	srv := httptest.NewServer(s.Routes(5 * time.Second))
	defer srv.Close()

	opts := defaultOptions()
	opts["preview"] = true
	opts["format"] = "png"

	body, ct := multipartBody(t, opts)
	resp, err := http.Post(srv.URL+"/api/v1/render", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, 1, fc.previews)
}

func TestRenderUnderBudgetRerenders(t *testing.T) {
	fc := &fakeCompositor{}
	s := New(fc, "test")
	srv := httptest.NewServer(s.Routes(5 * time.Second))
	defer srv.Close()

	opts := defaultOptions()
	opts["budget_bytes"] = 200 // force the search through its rungs

	body, ct := multipartBody(t, opts)
	resp, err := http.Post(srv.URL+"/api/v1/render", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, fc.composites, 1, "budget retries re-render the composite")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.Header.Get("X-Budget-Exceeded") == "" {
		assert.LessOrEqual(t, len(data), 200)
	}
}

func TestRenderValidation(t *testing.T) {
	s := New(&fakeCompositor{}, "test")
	srv := httptest.NewServer(s.Routes(5 * time.Second))
	defer srv.Close()

	opts := defaultOptions()
	delete(opts, "location")

	body, ct := multipartBody(t, opts)
	resp, err := http.Post(srv.URL+"/api/v1/render", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "INVALID_REQUEST", envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.RequestID)
}

func TestRenderMissingPhoto(t *testing.T) {
	s := New(&fakeCompositor{}, "test")
	srv := httptest.NewServer(s.Routes(5 * time.Second))
	defer srv.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	opts, _ := json.Marshal(defaultOptions())
	require.NoError(t, mw.WriteField("options", string(opts)))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/v1/render", mw.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
