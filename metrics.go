package trustcore

import "sync/atomic"

// MetricID defines a public type used by trustcore APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricSessionIssued is an exported constant or variable used by the trust-and-access engine.
	MetricSessionIssued MetricID = iota
	// MetricSessionRejected is an exported constant or variable used by the trust-and-access engine.
	MetricSessionRejected
	// MetricPasswordMismatch is an exported constant or variable used by the trust-and-access engine.
	MetricPasswordMismatch
	// MetricCSRFRejected is an exported constant or variable used by the trust-and-access engine.
	MetricCSRFRejected
	// MetricCapabilityIssued is an exported constant or variable used by the trust-and-access engine.
	MetricCapabilityIssued
	// MetricCapabilityRejected is an exported constant or variable used by the trust-and-access engine.
	MetricCapabilityRejected
	// MetricRateLimitHit is an exported constant or variable used by the trust-and-access engine.
	MetricRateLimitHit
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by trustcore APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by trustcore APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether the instance records anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter for id. Disabled instances are no-ops.
func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if !m.Enabled() || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter into a map. The copy is not atomic across
// counters; it is a monitoring view, not a ledger.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricIDCount),
	}
	if !m.Enabled() {
		return snapshot
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	return snapshot
}
