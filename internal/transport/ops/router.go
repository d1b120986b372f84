// Package ops exposes the operational HTTP surface: liveness of the backing
// stores and prometheus metrics. It is not reachable by bot users.
package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformredis "regbot/internal/platform/redis"
)

// NewRouter wires the health and metrics endpoints. The redis client may be
// nil when durable sessions are not configured.
func NewRouter(db *sql.DB, cache *platformredis.Client, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Error("health check: postgres", "error", err)
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
		if cache != nil {
			if err := cache.Health(ctx); err != nil {
				logger.Error("health check: redis", "error", err)
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
