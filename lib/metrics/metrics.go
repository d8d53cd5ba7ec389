// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics records the outcome of an export run for the
// node_exporter textfile collector.
//
// The exporter is a short-lived batch job, so nothing is served: a run
// fills a private registry and [Run.WriteTextfile] writes it to a .prom
// file that node_exporter picks up. The file is replaced atomically.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "colte_log_export"

// Run holds the metrics of one export run.
type Run struct {
	registry *prometheus.Registry

	rowsExported *prometheus.GaugeVec
	rowsPurged   *prometheus.GaugeVec
	kindDuration *prometheus.GaugeVec
	runDuration  prometheus.Gauge
	lastSuccess  prometheus.Gauge
	lastFailure  *prometheus.GaugeVec
	assignments  prometheus.Gauge
}

// New returns an empty Run on its own registry.
func New() *Run {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Run{
		registry: registry,
		rowsExported: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_exported",
			Help:      "Rows written to the archive by the last run, by log kind.",
		}, []string{"kind"}),
		rowsPurged: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_purged",
			Help:      "Live rows deleted by the last run, by log kind.",
		}, []string{"kind"}),
		kindDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kind_duration_seconds",
			Help:      "Time spent staging, archiving and purging each log kind in the last run.",
		}, []string{"kind"}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
		lastFailure: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_failure_timestamp_seconds",
			Help:      "Unix time the last failed run finished, by failure category.",
		}, []string{"category"}),
		assignments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pseudonymized_addresses",
			Help:      "Addresses with a subscriber assignment in the last run.",
		}),
	}
}

// Kind records one log kind's counts.
func (r *Run) Kind(kind string, exported, purged int64, duration time.Duration) {
	r.rowsExported.WithLabelValues(kind).Set(float64(exported))
	r.rowsPurged.WithLabelValues(kind).Set(float64(purged))
	r.kindDuration.WithLabelValues(kind).Set(duration.Seconds())
}

// Assignments records the size of the pseudonym map.
func (r *Run) Assignments(count int) {
	r.assignments.Set(float64(count))
}

// Finish records the run's end. An empty category is success.
func (r *Run) Finish(finished time.Time, duration time.Duration, category string) {
	r.runDuration.Set(duration.Seconds())
	if category == "" {
		r.lastSuccess.Set(float64(finished.Unix()))
		return
	}
	r.lastFailure.WithLabelValues(category).Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry for gathering.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics to path in the text exposition
// format, replacing any previous file.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: writing %s: %w", path, err)
	}
	return nil
}
