package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates request counts and latencies per API operation. It
// backs the instance metrics endpoint and costs one map lookup per
// request.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	operations map[string]*OperationMetrics
}

// OperationMetrics are the counters for a single operation.
type OperationMetrics struct {
	requestCount  atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		operations: make(map[string]*OperationMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(operation string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	om := m.operationMetrics(operation)
	om.requestCount.Add(1)
	om.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		om.errorCount.Add(1)
	}
}

func (m *Metrics) operationMetrics(operation string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	om, ok := m.operations[operation]
	if !ok {
		om = &OperationMetrics{}
		m.operations[operation] = om
	}
	return om
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	operations := make(map[string]*OperationSnapshot, len(m.operations))
	for name, om := range m.operations {
		count := om.requestCount.Load()
		snapshot := &OperationSnapshot{
			RequestCount:  count,
			ErrorCount:    om.errorCount.Load(),
			TotalDuration: om.totalDuration.Load(),
		}
		if count > 0 {
			snapshot.AverageDuration = snapshot.TotalDuration / count
		}
		operations[name] = snapshot
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Operations:    operations,
	}
}

// MetricsSnapshot is a point-in-time view of the collector.
type MetricsSnapshot struct {
	RequestTotal  int64
	RequestFailed int64
	Operations    map[string]*OperationSnapshot
}

// OperationSnapshot is the per-operation slice of a snapshot.
type OperationSnapshot struct {
	RequestCount    int64
	ErrorCount      int64
	TotalDuration   int64
	AverageDuration int64
}

// SuccessRate returns the success rate as a percentage.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
