// Package prometheus exports imgsim engine metrics in Prometheus format.
package prometheus

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/imgsim"
)

var _ imgsim.MetricsCollector = (*Collector)(nil)

// Config configures the collector.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prom.Registry

	// Namespace prefixes every metric name. Defaults to "imgsim".
	Namespace string

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Namespace:      "imgsim",
		LatencyBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}
}

// Collector implements imgsim.MetricsCollector on Prometheus metrics.
type Collector struct {
	registry *prom.Registry

	opLatency       *prom.HistogramVec
	indexFields     prom.Counter
	searchResults   prom.Histogram
	tableLoads      *prom.CounterVec
	metadataSkipped *prom.CounterVec
}

// New creates a collector and registers its metrics.
func New(cfg Config) *Collector {
	def := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = def.LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prom.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		opLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of engine operations",
			Buckets:   cfg.LatencyBuckets,
		}, []string{"op", "status"}),
		indexFields: prom.NewCounter(prom.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "index_fields_total",
			Help:      "Total fields emitted by successful index operations",
		}),
		searchResults: prom.NewHistogram(prom.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   prom.ExponentialBuckets(1, 2, 10),
		}),
		tableLoads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "hash_table_loads_total",
			Help:      "Hash table loads by scheme",
		}, []string{"scheme", "status"}),
		metadataSkipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "metadata_skipped_total",
			Help:      "Metadata failures ignored while indexing",
		}, []string{"field"}),
	}

	registry.MustRegister(c.opLatency, c.indexFields, c.searchResults, c.tableLoads, c.metadataSkipped)
	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prom.Registry { return c.registry }

// Handler serves the registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordIndex implements imgsim.MetricsCollector.
func (c *Collector) RecordIndex(duration time.Duration, fields int, err error) {
	c.opLatency.WithLabelValues("index", status(err)).Observe(duration.Seconds())
	if err == nil {
		c.indexFields.Add(float64(fields))
	}
}

// RecordDelete implements imgsim.MetricsCollector.
func (c *Collector) RecordDelete(duration time.Duration, err error) {
	c.opLatency.WithLabelValues("delete", status(err)).Observe(duration.Seconds())
}

// RecordSearch implements imgsim.MetricsCollector.
func (c *Collector) RecordSearch(_, results int, duration time.Duration, err error) {
	c.opLatency.WithLabelValues("search", status(err)).Observe(duration.Seconds())
	if err == nil {
		c.searchResults.Observe(float64(results))
	}
}

// RecordTableLoad implements imgsim.MetricsCollector.
func (c *Collector) RecordTableLoad(scheme string, duration time.Duration, err error) {
	c.opLatency.WithLabelValues("table_load", status(err)).Observe(duration.Seconds())
	c.tableLoads.WithLabelValues(scheme, status(err)).Inc()
}

// RecordMetadataSkipped implements imgsim.MetricsCollector.
func (c *Collector) RecordMetadataSkipped(field string) {
	c.metadataSkipped.WithLabelValues(field).Inc()
}
