package lshdb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter  prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, err error) {
//	    p.insertCounter.Inc()
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordQuery is called after each query. candidates is the size of
	// the matched bucket, results the number of kept entries.
	RecordQuery(candidates, results int, duration time.Duration, err error)

	// RecordGrow is called after the entry store grew.
	RecordGrow(from, to int)

	// RecordLookupMiss is called when a query signature has no bucket.
	RecordLookupMiss()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)          {}
func (NoopMetricsCollector) RecordQuery(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGrow(int, int)                        {}
func (NoopMetricsCollector) RecordLookupMiss()                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
	QueryCandidates  atomic.Int64
	QueryResults     atomic.Int64
	LookupMisses     atomic.Int64
	GrowCount        atomic.Int64
	Capacity         atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(candidates, results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryCandidates.Add(int64(candidates))
	b.QueryResults.Add(int64(results))
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_, to int) {
	b.GrowCount.Add(1)
	b.Capacity.Store(int64(to))
}

// RecordLookupMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookupMiss() {
	b.LookupMisses.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertErrors:    b.InsertErrors.Load(),
		InsertAvgNanos:  avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		QueryCount:      b.QueryCount.Load(),
		QueryErrors:     b.QueryErrors.Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		QueryCandidates: b.QueryCandidates.Load(),
		QueryResults:    b.QueryResults.Load(),
		LookupMisses:    b.LookupMisses.Load(),
		GrowCount:       b.GrowCount.Load(),
		Capacity:        b.Capacity.Load(),
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
	InsertCount     int64
	InsertErrors    int64
	InsertAvgNanos  int64
	QueryCount      int64
	QueryErrors     int64
	QueryAvgNanos   int64
	QueryCandidates int64
	QueryResults    int64
	LookupMisses    int64
	GrowCount       int64
	Capacity        int64
}
