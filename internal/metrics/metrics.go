// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors for generation attempts,
// exports and the HTTP API.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "essay_engine"

// Collectors groups every metric the engine records. Each Collectors value
// registers on its own registry so tests and commands never share state.
type Collectors struct {
	Registry *prometheus.Registry

	GenerationTotal    *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	SectionCount       prometheus.Histogram
	ReferenceCount     prometheus.Histogram
	ExportTotal        *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collectors{
		Registry: reg,
		GenerationTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Generation attempts by provider, outcome and error kind.",
		}, []string{"provider", "outcome", "kind"}),
		GenerationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Wall time of one generation call.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),
		SectionCount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "body_sections",
			Help:      "Body sections per generated essay.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),
		ReferenceCount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "references",
			Help:      "References per generated essay.",
			Buckets:   []float64{0, 2, 5, 8, 12, 20, 30},
		}),
		ExportTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "files_total",
			Help:      "Export files rendered by format.",
		}, []string{"format"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// ObserveAttempt records one generation attempt. kind is empty on success.
func (c *Collectors) ObserveAttempt(provider, kind string, d time.Duration) {
	outcome := "success"
	if kind != "" {
		outcome = "failure"
	}
	c.GenerationTotal.WithLabelValues(provider, outcome, kind).Inc()
	c.GenerationDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveEssay records the shape of a successful essay.
func (c *Collectors) ObserveEssay(sections, references int) {
	c.SectionCount.Observe(float64(sections))
	c.ReferenceCount.Observe(float64(references))
}

// ObserveExport counts one rendered file.
func (c *Collectors) ObserveExport(format string) {
	c.ExportTotal.WithLabelValues(format).Inc()
}

// WriteTextfile dumps every metric to path in the Prometheus text format,
// for pickup by a node_exporter textfile collector.
func (c *Collectors) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
