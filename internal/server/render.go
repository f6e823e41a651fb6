package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"strconv"
	"time"

	"github.com/geostamp/geostamp/config"
	"github.com/geostamp/geostamp/pkg/export"
	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/overlay"
	"github.com/geostamp/geostamp/pkg/staticmap"
	"github.com/geostamp/geostamp/pkg/weather"
)

// renderRequest is the JSON half of the multipart render request; the photo
// arrives as the "photo" file part.
type renderRequest struct {
	Location struct {
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		District    string  `json:"district"`
		City        string  `json:"city"`
		Province    string  `json:"province"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Address     string  `json:"address"`
	} `json:"location"`

	DateTime struct {
		Time      time.Time `json:"time"`
		Timezone  string    `json:"timezone"`
		UTCOffset string    `json:"utc_offset"`
	} `json:"datetime"`

	Style struct {
		ShowLatLong bool    `json:"show_lat_long"`
		ShowAddress bool    `json:"show_address"`
		Opacity     *int    `json:"opacity"` // nil means the default

		Use24Hour   bool    `json:"use_24h"`
		Watermark   string  `json:"watermark"`
		MapStyle    string  `json:"map_style"`
		SmartCrop   bool    `json:"smart_crop"`
		Variant     string  `json:"variant"`
		HeightRatio float64 `json:"info_box_height_ratio"`
	} `json:"style"`

	Weather *struct {
		TempC         int    `json:"temp_c"`
		TempF         int    `json:"temp_f"`
		ConditionCode int    `json:"condition_code"`
		Description   string `json:"description"`
		Icon          string `json:"icon"`
	} `json:"weather"`

	Format      string  `json:"format"`
	Quality     float64 `json:"quality"`
	BudgetBytes int     `json:"budget_bytes"`
	Preview     bool    `json:"preview"`
}

func (r *renderRequest) location() geo.LocationData {
	return geo.LocationData{
		Lat:         r.Location.Lat,
		Lng:         r.Location.Lng,
		District:    r.Location.District,
		City:        r.Location.City,
		Province:    r.Location.Province,
		Country:     r.Location.Country,
		CountryCode: r.Location.CountryCode,
		Address:     r.Location.Address,
	}
}

func (r *renderRequest) dateTime() geo.DateTimeData {
	return geo.DateTimeData{
		Time:      r.DateTime.Time,
		Timezone:  r.DateTime.Timezone,
		UTCOffset: r.DateTime.UTCOffset,
	}
}

func (r *renderRequest) settings() overlay.Settings {
	opacity := config.DefaultOpacity
	if r.Style.Opacity != nil {
		opacity = *r.Style.Opacity
	}
	s := overlay.Settings{
		ShowLatLong: r.Style.ShowLatLong,
		ShowAddress: r.Style.ShowAddress,
		Opacity:     opacity,
		Use24Hour:   r.Style.Use24Hour,
		Watermark:   r.Style.Watermark,
		MapStyle:    staticmap.Style(r.Style.MapStyle),
		SmartCrop:   r.Style.SmartCrop,
	}
	if r.Style.Variant == "card" {
		s.Variant = overlay.VariantCard
	}
	if r.Style.HeightRatio > 0 {
		ls := overlay.DefaultLayoutSettings()
		ls.InfoBoxHeightRatio = r.Style.HeightRatio
		s.Layout = ls
	}
	return s
}

func (r *renderRequest) weatherData() *weather.Data {
	if r.Weather == nil {
		return nil
	}
	return &weather.Data{
		TempC:         r.Weather.TempC,
		TempF:         r.Weather.TempF,
		ConditionCode: r.Weather.ConditionCode,
		Description:   r.Weather.Description,
		Icon:          r.Weather.Icon,
	}
}

func (r *renderRequest) exportFormat() export.Format {
	switch r.Format {
	case "png":
		return export.FormatPNG
	case "webp":
		return export.FormatWebP
	default:
		return export.FormatJPEG
	}
}

func (r *renderRequest) validate() error {
	if r.Location.Lat == 0 && r.Location.Lng == 0 && r.Location.Address == "" && r.Location.Country == "" {
		return fmt.Errorf("location is required")
	}
	if r.DateTime.Time.IsZero() {
		return fmt.Errorf("datetime.time is required")
	}
	return nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", err.Error(), reqID)
		return
	}

	var req renderRequest
	if err := json.Unmarshal([]byte(r.FormValue("options")), &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "options part must be valid JSON", reqID)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), reqID)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_PHOTO", "photo file part is required", reqID)
		return
	}
	defer file.Close()

	photo, _, err := image.Decode(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNDECODABLE_PHOTO", err.Error(), reqID)
		return
	}

	format := req.exportFormat()
	quality := req.Quality
	if quality <= 0 || quality > 1 {
		quality = 0.9
	}

	var data []byte
	var oversized bool

	switch {
	case req.Preview:
		img, err := s.compositor.Preview(r.Context(), photo, req.location(), req.dateTime(), req.settings(), req.weatherData())
		if err != nil {
			s.writeCompositeError(w, err, reqID)
			return
		}
		data, err = export.Encode(img, format, quality)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error(), reqID)
			return
		}

	case req.BudgetBytes > 0:
		res, err := export.EncodeUnderBudget(r.Context(), s.renderAtScale(r.Context(), photo, &req), format, req.BudgetBytes)
		if err != nil {
			s.writeCompositeError(w, err, reqID)
			return
		}
		data = res.Data
		oversized = res.Oversized

	default:
		img, err := s.compositor.Composite(r.Context(), photo, req.location(), req.dateTime(), req.settings(), req.weatherData())
		if err != nil {
			s.writeCompositeError(w, err, reqID)
			return
		}
		data, err = export.Encode(img, format, quality)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error(), reqID)
			return
		}
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", attachmentHeader(export.Filename(req.dateTime(), format)))
	w.Header().Set("X-Request-Id", reqID)
	if oversized {
		w.Header().Set("X-Budget-Exceeded", "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeCompositeError maps precondition violations to 400s; anything else is
// a server fault.
func (s *Server) writeCompositeError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, overlay.ErrNoImage), errors.Is(err, overlay.ErrNoLocation), errors.Is(err, overlay.ErrBadDimensions):
		writeError(w, http.StatusBadRequest, "PRECONDITION_FAILED", err.Error(), reqID)
	default:
		writeError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error(), reqID)
	}
}
