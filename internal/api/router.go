// Package api exposes the consumer's operational surface: health,
// Prometheus metrics and a JSON snapshot of pipeline counters.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlphaCodeSWE/NearYou/internal/cache"
	"github.com/AlphaCodeSWE/NearYou/internal/metrics"
)

type Stats struct {
	counters *metrics.Counters
	latency  *metrics.Latency
	caches   []cache.Store
}

func NewStats(counters *metrics.Counters, latency *metrics.Latency, caches []cache.Store) *Stats {
	return &Stats{counters: counters, latency: latency, caches: caches}
}

func NewRouter(stats *Stats) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/stats", stats.handleStats)

	return r
}

func (s *Stats) handleStats(w http.ResponseWriter, r *http.Request) {
	cacheStats := make([]map[string]any, 0, len(s.caches))
	for _, c := range s.caches {
		cacheStats = append(cacheStats, c.Stats())
	}

	body := map[string]any{
		"counters":               s.counters.Snapshot(),
		"avg_processing_time_ms": float64(s.latency.Average().Microseconds()) / 1000.0,
		"latency_samples":        s.latency.SampleCount(),
		"caches":                 cacheStats,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "encode stats", http.StatusInternalServerError)
	}
}
