package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/defect-vision/internal/application/analysis"
	domain "github.com/bryanwahyu/defect-vision/internal/domain/analysis"
	"github.com/bryanwahyu/defect-vision/internal/domain/history"
	"github.com/bryanwahyu/defect-vision/internal/infra/storage"
	"github.com/bryanwahyu/defect-vision/internal/middleware"
)

// maxUploadBytes caps multipart image uploads.
const maxUploadBytes = 20 << 20

type Router struct {
	svc    *appanalysis.Service
	images *storage.Store
	log    *zap.Logger
}

// Options tunes the middleware stack.
type Options struct {
	CORSOrigins []string
	RateLimit   int // requests per second per IP, 0 disables
}

// NewRouter wires the HTTP surface. images may be nil when no object store is
// configured; the upload route is then not mounted.
func NewRouter(svc *appanalysis.Service, images *storage.Store, log *zap.Logger, opts Options) http.Handler {
	r := &Router{svc: svc, images: images, log: log}
	mux := chi.NewRouter()

	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
		}))
	}
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.Metrics)
	if opts.RateLimit > 0 {
		mux.Use(middleware.RateLimitMiddleware(opts.RateLimit, opts.RateLimit))
	}

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"provider": middleware.ProviderConfigured(svc.Provider != nil),
	}))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/history", r.wrap(r.handleHistoryList))
		rt.Get("/history/{id}", r.wrap(r.handleHistoryGet))
		if images != nil {
			rt.Post("/upload", r.wrap(r.handleUpload))
		}
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks request validation failures, the only error class
// allowed to produce a non-200 besides a missing record.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequestError
			switch {
			case errors.As(err, &br):
				writeError(w, http.StatusBadRequest, br.msg)
			case errors.Is(err, history.ErrNotFound):
				writeError(w, http.StatusNotFound, "history record not found")
			default:
				r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /api/analyze
// Body: {"image_url": "<url or data:image ref>", "description": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body domain.Request
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	if err := middleware.ValidateImageURL(body.ImageURL); err != nil {
		return badRequest("%v", err)
	}

	resp, err := r.svc.Analyze(req.Context(), body)
	if err != nil {
		return err
	}

	for slot, secs := range resp.Runtime {
		middleware.ModelAnalysisDuration.WithLabelValues(slot).Observe(secs)
	}

	return writeJSON(w, resp)
}

// GET /api/history
func (r *Router) handleHistoryList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.ListHistory(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /api/history/{id}
func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	rec, err := r.svc.GetHistory(req.Context(), history.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

// POST /api/upload
// Multipart form with one "file" field; responds with the stored image URL.
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest("invalid multipart form: %v", err)
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest("file field is required")
	}
	defer file.Close()

	url, err := r.images.UploadImage(req.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	return writeJSON(w, map[string]string{"url": url})
}
