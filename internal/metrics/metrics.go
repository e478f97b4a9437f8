// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics holds the Prometheus collectors for statements executed by
// the drivers and requests served by the data service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "sqlbridge/cli/internal/errors"
)

// Metrics is a set of collectors registered on one registry.
type Metrics struct {
	// StatementsTotal counts executed statements by dialect, verb and status.
	StatementsTotal *prometheus.CounterVec
	// StatementDuration is the round-trip latency of executed statements.
	StatementDuration *prometheus.HistogramVec
	// RequestsTotal counts data requests by entity, operation and status.
	RequestsTotal *prometheus.CounterVec
	// RowsReturned counts rows delivered to clients by entity.
	RowsReturned *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StatementsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlbridge_statements_total",
				Help: "Total number of SQL statements executed",
			},
			[]string{"dialect", "verb", "status"},
		),
		StatementDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sqlbridge_statement_duration_seconds",
				Help:    "SQL statement latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dialect", "verb"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlbridge_requests_total",
				Help: "Total number of data requests",
			},
			[]string{"entity", "operation", "status"},
		),
		RowsReturned: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlbridge_rows_returned_total",
				Help: "Total number of rows returned to clients",
			},
			[]string{"entity"},
		),
	}
}

// status is "ok" for nil and the error kind otherwise.
func status(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.KindOf(err))
}

// ObserveStatement records one executed statement.
func (m *Metrics) ObserveStatement(dialect, verb string, elapsed time.Duration, err error) {
	m.StatementsTotal.WithLabelValues(dialect, verb, status(err)).Inc()
	m.StatementDuration.WithLabelValues(dialect, verb).Observe(elapsed.Seconds())
}

// ObserveRequest records one served request and the rows it returned.
func (m *Metrics) ObserveRequest(entity, operation string, rows int, err error) {
	m.RequestsTotal.WithLabelValues(entity, operation, status(err)).Inc()
	if rows > 0 {
		m.RowsReturned.WithLabelValues(entity).Add(float64(rows))
	}
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
