// Package server exposes the compositor over HTTP. One endpoint accepts a
// photo plus resolved geotag data and returns the stamped image, optionally
// under a byte budget.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/geostamp/geostamp/pkg/export"
	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/overlay"
	"github.com/geostamp/geostamp/pkg/weather"
	"github.com/geostamp/geostamp/util/log"
)

// maxUploadBytes bounds the multipart photo upload.
const maxUploadBytes = 64 << 20

// Compositor is the rendering dependency; *overlay.Compositor satisfies it.
type Compositor interface {
	Composite(ctx context.Context, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style overlay.Settings, wx *weather.Data) (*image.RGBA, error)
	Preview(ctx context.Context, photo image.Image, loc geo.LocationData, dt geo.DateTimeData, style overlay.Settings, wx *weather.Data) (*image.RGBA, error)
}

// Server carries the handler dependencies.
type Server struct {
	compositor Compositor
	version    string
	startTime  time.Time
}

// New creates a Server.
func New(compositor Compositor, version string) *Server {
	return &Server{
		compositor: compositor,
		version:    version,
		startTime:  time.Now(),
	}
}

// Routes builds the chi router with the standard middleware stack.
func (s *Server) Routes(timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/render", s.handleRender)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int    `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Version: s.version,
		Uptime:  int(time.Since(s.startTime).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("encoding health response: %v", err)
	}
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message, RequestID: requestID}}); err != nil {
		log.Printf("encoding error response: %v", err)
	}
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func contentType(format export.Format) string {
	switch format {
	case export.FormatPNG:
		return "image/png"
	case export.FormatWebP:
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func attachmentHeader(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, filename)
}

// renderAtScale re-renders input for one budget-search iteration. The whole
// composite runs again because overlay sizing follows the output width.
func (s *Server) renderAtScale(ctx context.Context, photo image.Image, req *renderRequest) export.RenderFunc {
	return func(scale float64) (image.Image, error) {
		src := photo
		if scale < 1.0 {
			w := int(float64(photo.Bounds().Dx()) * scale)
			if w < 1 {
				w = 1
			}
			src = imaging.Resize(photo, w, 0, imaging.Lanczos)
		}
		return s.compositor.Composite(ctx, src, req.location(), req.dateTime(), req.settings(), req.weatherData())
	}
}
