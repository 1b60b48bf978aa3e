// Package telemetry exports training progress as Prometheus metrics.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/YuminosukeSato/gdlogit/linear"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gdlogit"

// Metrics holds the training collectors, all labeled by model.
type Metrics struct {
	Iterations *prometheus.CounterVec
	Cost       *prometheus.GaugeVec
	Runs       *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "training",
				Name:      "iterations_total",
				Help:      "Gradient-descent iterations performed.",
			}, []string{"model"}),
		Cost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "training",
				Name:      "cost",
				Help:      "Most recently recorded regularized cost.",
			}, []string{"model"}),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "training",
				Name:      "runs_total",
				Help:      "Completed training runs.",
			}, []string{"model"}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "training",
				Name:      "duration_seconds",
				Help:      "Wall-clock time of completed training runs.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			}, []string{"model"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Iterations, m.Cost, m.Runs, m.Duration} {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "register training metrics")
		}
	}
	return nil
}

// Observer returns a linear.Observer recording under the given model label.
// One-vs-all runs share it, so the cost gauge shows whichever class reported
// last.
func (m *Metrics) Observer(model string) linear.Observer {
	return &observer{
		iterations: m.Iterations.WithLabelValues(model),
		cost:       m.Cost.WithLabelValues(model),
		runs:       m.Runs.WithLabelValues(model),
		duration:   m.Duration.WithLabelValues(model),
	}
}

type observer struct {
	iterations prometheus.Counter
	cost       prometheus.Gauge
	runs       prometheus.Counter
	duration   prometheus.Observer
}

func (o *observer) ObserveIteration(_ string, _ int, cost float64) {
	o.iterations.Inc()
	o.cost.Set(cost)
}

func (o *observer) ObserveRun(_ string, _ int, finalCost float64, d time.Duration) {
	o.runs.Inc()
	o.cost.Set(finalCost)
	o.duration.Observe(d.Seconds())
}

// Handler returns the /metrics handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger := log.GetLoggerWithName("telemetry")
	errc := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrapf(err, "metrics server %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "metrics server shutdown")
		}
		return nil
	}
}
