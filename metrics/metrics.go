// Package metrics counts what a scrape run did, using a private Prometheus
// registry so the counters can be written to a textfile-collector file at
// the end of a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page kinds.
const (
	KindListing = "listing"
	KindArticle = "article"
)

// Skip reasons.
const (
	ReasonFetch        = "fetch"
	ReasonMissingTitle = "missing_title"
)

// Metrics holds the counters of a single run.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched    *prometheus.CounterVec
	FetchFailures   *prometheus.CounterVec
	ArticlesSkipped *prometheus.CounterVec
	RecordsWritten  prometheus.Counter
	CompaniesFound  prometheus.Counter
	RunDuration     prometheus.Gauge
}

// New creates a fresh set of counters on their own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cruncher_pages_fetched_total",
				Help: "Pages fetched and parsed successfully",
			},
			[]string{"kind"},
		),
		FetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cruncher_fetch_failures_total",
				Help: "Pages that could not be fetched",
			},
			[]string{"kind"},
		),
		ArticlesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cruncher_articles_skipped_total",
				Help: "Articles left out of the result table",
			},
			[]string{"reason"},
		),
		RecordsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "cruncher_records_total",
			Help: "Records added to the result table",
		}),
		CompaniesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "cruncher_companies_found_total",
			Help: "Records with a company name",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cruncher_run_duration_seconds",
			Help: "Wall clock duration of the last run",
		}),
	}
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordFetch counts a fetched or failed page of the given kind.
func (m *Metrics) RecordFetch(kind string, err error) {
	if err != nil {
		m.FetchFailures.WithLabelValues(kind).Inc()
		return
	}
	m.PagesFetched.WithLabelValues(kind).Inc()
}

// RecordSkip counts an article dropped for reason.
func (m *Metrics) RecordSkip(reason string) {
	m.ArticlesSkipped.WithLabelValues(reason).Inc()
}

// RecordRecord counts a record added to the table.
func (m *Metrics) RecordRecord(hasCompany bool) {
	m.RecordsWritten.Inc()
	if hasCompany {
		m.CompaniesFound.Inc()
	}
}

// WriteTextfile writes every counter to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
