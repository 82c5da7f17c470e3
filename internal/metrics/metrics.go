// Package metrics exposes Prometheus instrumentation for the pipeline and
// the notification bot, plus a small HTTP server publishing /metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ra_search_requests_total",
			Help: "Total number of pipeline runs by mode",
		},
		[]string{"mode"},
	)

	CollaboratorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ra_collaborator_errors_total",
			Help: "Upstream failures degraded to empty contributions",
		},
		[]string{"collaborator"},
	)

	FetchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ra_fetch_results_total",
			Help: "Raw items fetched per source phase",
		},
		[]string{"phase"},
	)

	ItemsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ra_items_rejected_total",
			Help: "Items rejected by the article classifier per rule",
		},
		[]string{"rule"},
	)

	ItemsAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ra_items_accepted_total",
			Help: "Items accepted by the article classifier",
		},
	)

	DedupDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ra_dedup_dropped_total",
			Help: "Items dropped as duplicates by match kind",
		},
		[]string{"kind"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ra_pipeline_duration_seconds",
			Help:    "End-to-end pipeline run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"mode"},
	)

	BotDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ra_bot_deliveries_total",
			Help: "Digest messages delivered by the notification bot",
		},
	)
)

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
