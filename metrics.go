package imgsim

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordIndex is called after each index operation.
	// fields is the number of emitted fields, err is nil if successful.
	RecordIndex(duration time.Duration, fields int, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	// k is the number of results requested, results the number returned.
	RecordSearch(k, results int, duration time.Duration, err error)

	// RecordTableLoad is called once per hash table loaded from a store.
	RecordTableLoad(scheme string, duration time.Duration, err error)

	// RecordMetadataSkipped is called when a metadata failure is ignored.
	RecordMetadataSkipped(field string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndex(time.Duration, int, error)        {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)            {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordTableLoad(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordMetadataSkipped(string)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IndexCount       atomic.Int64
	IndexErrors      atomic.Int64
	IndexFields      atomic.Int64
	IndexTotalNanos  atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
	TableLoads       atomic.Int64
	TableLoadErrors  atomic.Int64
	MetadataSkipped  atomic.Int64
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(duration time.Duration, fields int, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
		return
	}
	b.IndexFields.Add(int64(fields))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchResults.Add(int64(results))
}

// RecordTableLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTableLoad(_ string, _ time.Duration, err error) {
	b.TableLoads.Add(1)
	if err != nil {
		b.TableLoadErrors.Add(1)
	}
}

// RecordMetadataSkipped implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMetadataSkipped(string) {
	b.MetadataSkipped.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexCount:      b.IndexCount.Load(),
		IndexErrors:     b.IndexErrors.Load(),
		IndexFields:     b.IndexFields.Load(),
		IndexAvgNanos:   avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
		DeleteCount:     b.DeleteCount.Load(),
		DeleteErrors:    b.DeleteErrors.Load(),
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchResults:   b.SearchResults.Load(),
		SearchAvgNanos:  avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		TableLoads:      b.TableLoads.Load(),
		TableLoadErrors: b.TableLoadErrors.Load(),
		MetadataSkipped: b.MetadataSkipped.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IndexCount      int64
	IndexErrors     int64
	IndexFields     int64
	IndexAvgNanos   int64
	DeleteCount     int64
	DeleteErrors    int64
	SearchCount     int64
	SearchErrors    int64
	SearchResults   int64
	SearchAvgNanos  int64
	TableLoads      int64
	TableLoadErrors int64
	MetadataSkipped int64
}
