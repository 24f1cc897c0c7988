package recgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSerialize is called after each record encode and write.
	// size is the encoded record size, zero on failure.
	RecordSerialize(size int, duration time.Duration, err error)

	// RecordDeserialize is called after each record read and decode.
	RecordDeserialize(duration time.Duration, err error)

	// RecordEdgeAppend is called after the adjacency lists of a new edge are
	// updated. pairs is the number of list entries written.
	RecordEdgeAppend(pairs int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSerialize(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDeserialize(time.Duration, error)     {}
func (NoopMetricsCollector) RecordEdgeAppend(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SerializeCount      atomic.Int64
	SerializeErrors     atomic.Int64
	SerializeBytes      atomic.Int64
	SerializeTotalNanos atomic.Int64
	DeserializeCount    atomic.Int64
	DeserializeErrors   atomic.Int64
	DeserializeNanos    atomic.Int64
	EdgeAppendCount     atomic.Int64
	EdgeAppendPairs     atomic.Int64
	EdgeAppendErrors    atomic.Int64
}

// RecordSerialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSerialize(size int, duration time.Duration, err error) {
	b.SerializeCount.Add(1)
	b.SerializeTotalNanos.Add(duration.Nanoseconds())
	b.SerializeBytes.Add(int64(size))
	if err != nil {
		b.SerializeErrors.Add(1)
	}
}

// RecordDeserialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDeserialize(duration time.Duration, err error) {
	b.DeserializeCount.Add(1)
	b.DeserializeNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DeserializeErrors.Add(1)
	}
}

// RecordEdgeAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEdgeAppend(pairs int, duration time.Duration, err error) {
	b.EdgeAppendCount.Add(1)
	b.EdgeAppendPairs.Add(int64(pairs))
	if err != nil {
		b.EdgeAppendErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SerializeCount:      b.SerializeCount.Load(),
		SerializeErrors:     b.SerializeErrors.Load(),
		SerializeBytes:      b.SerializeBytes.Load(),
		SerializeAvgNanos:   avg(b.SerializeTotalNanos.Load(), b.SerializeCount.Load()),
		DeserializeCount:    b.DeserializeCount.Load(),
		DeserializeErrors:   b.DeserializeErrors.Load(),
		DeserializeAvgNanos: avg(b.DeserializeNanos.Load(), b.DeserializeCount.Load()),
		EdgeAppendCount:     b.EdgeAppendCount.Load(),
		EdgeAppendPairs:     b.EdgeAppendPairs.Load(),
		EdgeAppendErrors:    b.EdgeAppendErrors.Load(),
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
	SerializeCount      int64
	SerializeErrors     int64
	SerializeBytes      int64
	SerializeAvgNanos   int64
	DeserializeCount    int64
	DeserializeErrors   int64
	DeserializeAvgNanos int64
	EdgeAppendCount     int64
	EdgeAppendPairs     int64
	EdgeAppendErrors    int64
}
