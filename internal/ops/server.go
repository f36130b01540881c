// Package ops exposes the monitor's operational HTTP surface: liveness,
// readiness and a fleet metrics snapshot. It is intentionally small; the
// monitor has no rider-facing API.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
)

// MetricsSource provides the current fleet analysis metrics.
type MetricsSource interface {
	MetricsSnapshot() map[string]interface{}
}

// ReadyFunc reports whether the monitor's dependencies are reachable.
type ReadyFunc func(ctx context.Context) error

// ServerConfig holds configuration for the ops server.
type ServerConfig struct {
	Addr      string
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   MetricsSource
	Ready     ReadyFunc

	// RequestLimit caps requests per minute per client IP. Default: 60.
	RequestLimit int
}

// NewServer creates an HTTP server for the ops endpoints.
func NewServer(cfg ServerConfig) *http.Server {
	limit := cfg.RequestLimit
	if limit <= 0 {
		limit = 60
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByRealIP)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"time":       time.Now().UTC(),
			"version":    cfg.Version,
			"build_time": cfg.BuildTime,
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		snapshot := map[string]interface{}{}
		if cfg.Metrics != nil {
			snapshot = cfg.Metrics.MetricsSnapshot()
		}
		writeJSON(w, http.StatusOK, snapshot)
	})

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("ops request")
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // response already committed
}
