// Package server exposes datasets, legends, symbols and per-client map views
// over HTTP for a browser map.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/symbolmap/internal/mapview"
)

// Default symbol cache sizing.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 5 * time.Minute
)

// Server routes API requests to a view registry.
type Server struct {
	reg    *mapview.Registry
	cache  *SymbolCache
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithSymbolCache replaces the default symbol layer cache.
func WithSymbolCache(c *SymbolCache) Option {
	return func(s *Server) { s.cache = c }
}

// New builds the router. allowedOrigins feeds the CORS policy; empty means
// any origin.
func New(reg *mapview.Registry, allowedOrigins []string, opts ...Option) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s := &Server{reg: reg}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		s.cache = NewSymbolCache(DefaultCacheSize, DefaultCacheTTL)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Get("/legend/{attribute}", s.handleLegend)
		r.Get("/symbols/{attribute}", s.handleSymbols)
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handlePurgeCache)

		r.Post("/views", s.handleCreateView)
		r.Route("/views/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Delete("/", s.handleDeleteView)
			r.Post("/step", s.handleStep)
			r.Put("/index", s.handleSeek)
			r.Put("/group", s.handleSelectGroup)
			r.Delete("/group", s.handleClearGroup)
			r.Get("/symbols", s.handleViewSymbols)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeGeoJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode geojson", zap.Error(err))
	}
}

func writeGeoJSONBytes(w http.ResponseWriter, data []byte, cache string) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Warn("server: write geojson", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
