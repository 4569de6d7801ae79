// Package metrics exports the result of a run in the Prometheus text format
// for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

const namespace = "orderbot"

// Recorder holds the metrics of one run in a private registry.
type Recorder struct {
	registry       *promclient.Registry
	orders         *promclient.CounterVec
	submitAttempts promclient.Histogram
	orderDuration  promclient.Histogram
	advanceReloads promclient.Counter
	runDuration    promclient.Gauge
	lastRun        promclient.Gauge
	archived       promclient.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: promclient.NewRegistry(),
		orders: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders processed in the last run, by outcome.",
		}, []string{"status"}),
		submitAttempts: promclient.NewHistogram(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_attempts",
			Help:      "Order button clicks needed per attempted order.",
			Buckets:   []float64{1, 2, 3, 5, 10},
		}),
		orderDuration: promclient.NewHistogram(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "order_duration_seconds",
			Help:      "Time from filling the form to the next empty form.",
			Buckets:   promclient.DefBuckets,
		}),
		advanceReloads: promclient.NewCounter(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "advance_reloads_total",
			Help:      "Orders after which the form had to be reloaded.",
		}),
		runDuration: promclient.NewGauge(promclient.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: promclient.NewGauge(promclient.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		archived: promclient.NewGauge(promclient.GaugeOpts{
			Namespace: namespace,
			Name:      "archived_files",
			Help:      "Files written to the receipts archive by the last run.",
		}),
	}

	for _, c := range []promclient.Collector{
		r.orders, r.submitAttempts, r.orderDuration, r.advanceReloads, r.runDuration, r.lastRun, r.archived,
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register run metrics: %w", err)
		}
	}
	for _, status := range []domain.OrderStatus{domain.StatusSucceeded, domain.StatusFailed, domain.StatusSkipped} {
		r.orders.WithLabelValues(string(status))
	}
	return r, nil
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *promclient.Registry {
	return r.registry
}

// Observe records a finished run.
func (r *Recorder) Observe(summary *domain.RunSummary, archivedFiles int) {
	for _, o := range summary.Outcomes {
		r.orders.WithLabelValues(string(o.Status)).Inc()
		if o.Status == domain.StatusSkipped {
			continue
		}
		r.submitAttempts.Observe(float64(o.SubmitClicks))
		r.orderDuration.Observe(o.Duration.Seconds())
		if o.AdvanceReload {
			r.advanceReloads.Inc()
		}
	}
	r.runDuration.Set(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	r.lastRun.Set(float64(summary.FinishedAt.Unix()))
	r.archived.Set(float64(archivedFiles))
}

// WriteTextfile writes the metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
