// Package metrics exposes Prometheus instrumentation for the proxy: HTTP
// request counters and latency, statement execution counts, and schema-cache
// misses.
package metrics

import (
	"cmp"
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabrest_http_requests_total",
			Help: "Total number of HTTP requests by method and status",
		},
		[]string{"method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabrest_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	StatementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabrest_statements_total",
			Help: "Total number of SQL statements executed by operation",
		},
		[]string{"operation"},
	)

	SchemaCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabrest_schema_cache_misses_total",
			Help: "Total number of schema cache misses triggering introspection",
		},
	)
)

// statusRecorder captures the response status for the instrumentation
// middleware without pulling in the middleware package.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	sr.status = statusCode
	sr.ResponseWriter.WriteHeader(statusCode)
}

// Instrument counts requests and observes latency per method.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// PromServerOpts configures the standalone metrics endpoint.
type PromServerOpts struct {
	Addr              string
	Path              string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func defaultPromServerOpts() PromServerOpts {
	return PromServerOpts{
		Addr:              ":9100",
		Path:              "/metrics",
		ShutdownTimeout:   5 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// StartPrometheusServer serves /metrics on its own listener, shutting down
// gracefully when ctx is canceled.
func StartPrometheusServer(ctx context.Context, wg *sync.WaitGroup, logger *zap.Logger, opts *PromServerOpts) {
	effective := defaultPromServerOpts()
	if opts != nil {
		effective.Addr = cmp.Or(opts.Addr, effective.Addr)
		effective.Path = cmp.Or(opts.Path, effective.Path)
		effective.ShutdownTimeout = cmp.Or(opts.ShutdownTimeout, effective.ShutdownTimeout)
		effective.ReadHeaderTimeout = cmp.Or(opts.ReadHeaderTimeout, effective.ReadHeaderTimeout)
	}

	mux := http.NewServeMux()
	mux.Handle(effective.Path, promhttp.Handler())
	server := &http.Server{
		Addr:              effective.Addr,
		Handler:           mux,
		ReadHeaderTimeout: effective.ReadHeaderTimeout,
	}

	serverClosed := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting metrics server", zap.String("addr", effective.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
		close(serverClosed)
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), effective.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", zap.Error(err))
		}

		select {
		case <-serverClosed:
		case <-shutdownCtx.Done():
			logger.Warn("metrics server shutdown timed out")
		}
	}()
}
