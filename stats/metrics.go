package stats

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "earthglow_frames_total",
			Help: "Total number of frames rendered.",
		},
	)

	frameSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "earthglow_frame_seconds",
			Help:    "Time spent rendering one frame, in seconds.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.0166, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	tickErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "earthglow_tick_errors_total",
			Help: "Total number of ticks aborted by an error.",
		},
	)
)

func init() {
	prometheus.MustRegister(framesTotal)
	prometheus.MustRegister(frameSeconds)
	prometheus.MustRegister(tickErrorsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TickError counts a tick that ended in an error.
func TickError() {
	tickErrorsTotal.Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
