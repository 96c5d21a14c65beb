// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the orchestrator.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the answer
// enforcement pipeline. Metrics include:
//   - Request counters (by outcome)
//   - Source fetch latency histograms and status counters
//   - Redacted sentence and dropped field counters
//
// # Integration
//
// Metrics are exposed via /metrics endpoint. Use with Prometheus + Grafana
// for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "lorekeep"

// Subsystem for pipeline metrics
const pipelineSubsystem = "pipeline"

// PipelineMetrics holds all Prometheus metrics for the ask pipeline.
//
// Initialize once at startup via InitMetrics().
type PipelineMetrics struct {
	// RequestsTotal counts ask requests by terminal outcome.
	// Labels: outcome (answered, rejected, schema_violation, error)
	RequestsTotal *prometheus.CounterVec

	// SourceFetchesTotal counts adapter fetches by source and status.
	// Labels: source (wiki, hltb, igdb), status (found, not_found, errored)
	SourceFetchesTotal *prometheus.CounterVec

	// SourceFetchSeconds measures adapter fetch latency.
	// Labels: source
	SourceFetchSeconds *prometheus.HistogramVec

	// RedactedSentencesTotal counts sentences relocated by the spoiler
	// redactor.
	RedactedSentencesTotal prometheus.Counter

	// DroppedFieldsTotal counts fields removed by the hygiene validator.
	// Labels: field
	DroppedFieldsTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures end-to-end ask latency.
	// Labels: outcome
	PipelineDurationSeconds *prometheus.HistogramVec
}

// DefaultMetrics is the singleton instance of PipelineMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *PipelineMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// application startup; a second call panics on duplicate registration.
func InitMetrics() *PipelineMetrics {
	DefaultMetrics = &PipelineMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "requests_total",
				Help:      "Total ask requests by terminal outcome",
			},
			[]string{"outcome"},
		),

		SourceFetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "source_fetches_total",
				Help:      "Total source adapter fetches by source and status",
			},
			[]string{"source", "status"},
		),

		SourceFetchSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "source_fetch_seconds",
				Help:      "Source adapter fetch latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"source"},
		),

		RedactedSentencesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "redacted_sentences_total",
				Help:      "Total sentences relocated behind a spoiler warning",
			},
		),

		DroppedFieldsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "dropped_fields_total",
				Help:      "Total fields removed by hygiene validation",
			},
			[]string{"field"},
		),

		PipelineDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "duration_seconds",
				Help:      "End-to-end ask pipeline latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"outcome"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Outcome Names
// =============================================================================

// Outcome labels a terminal pipeline result for metrics.
type Outcome string

const (
	// OutcomeAnswered means a validated answer was returned.
	OutcomeAnswered Outcome = "answered"

	// OutcomeRejected means no field survived validation.
	OutcomeRejected Outcome = "rejected"

	// OutcomeSchemaViolation means the draft carried unknown provenance.
	OutcomeSchemaViolation Outcome = "schema_violation"

	// OutcomeError means the pipeline itself failed.
	OutcomeError Outcome = "error"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed ask request with its latency.
func (m *PipelineMetrics) RecordRequest(outcome Outcome, seconds float64) {
	m.RequestsTotal.WithLabelValues(string(outcome)).Inc()
	m.PipelineDurationSeconds.WithLabelValues(string(outcome)).Observe(seconds)
}

// RecordSourceFetch records one adapter fetch.
func (m *PipelineMetrics) RecordSourceFetch(source, status string, seconds float64) {
	m.SourceFetchesTotal.WithLabelValues(source, status).Inc()
	m.SourceFetchSeconds.WithLabelValues(source).Observe(seconds)
}

// RecordRedactions adds to the relocated sentence counter.
func (m *PipelineMetrics) RecordRedactions(count int) {
	if count > 0 {
		m.RedactedSentencesTotal.Add(float64(count))
	}
}

// RecordDroppedFields counts each field the validator removed.
func (m *PipelineMetrics) RecordDroppedFields(fields []string) {
	for _, f := range fields {
		m.DroppedFieldsTotal.WithLabelValues(f).Inc()
	}
}
