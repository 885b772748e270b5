package trustcore

import (
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricSessionIssued)
	m.Inc(MetricSessionIssued)
	m.Inc(MetricRateLimitHit)

	if got := m.Value(MetricSessionIssued); got != 2 {
		t.Fatalf("Value(MetricSessionIssued) = %d, want 2", got)
	}

	snapshot := m.Snapshot()
	if snapshot.Counters[MetricSessionIssued] != 2 {
		t.Fatalf("snapshot MetricSessionIssued = %d, want 2", snapshot.Counters[MetricSessionIssued])
	}
	if snapshot.Counters[MetricRateLimitHit] != 1 {
		t.Fatalf("snapshot MetricRateLimitHit = %d, want 1", snapshot.Counters[MetricRateLimitHit])
	}
	if snapshot.Counters[MetricCSRFRejected] != 0 {
		t.Fatalf("untouched counter must be zero, got %d", snapshot.Counters[MetricCSRFRejected])
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricSessionIssued)

	if m.Enabled() {
		t.Fatal("expected disabled metrics")
	}
	if got := m.Value(MetricSessionIssued); got != 0 {
		t.Fatalf("disabled metrics recorded %d", got)
	}
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("disabled snapshot must be empty")
	}
}

func TestMetricsOutOfRangeID(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(metricIDCount)
	m.Inc(MetricID(9999))

	if got := m.Value(MetricID(9999)); got != 0 {
		t.Fatalf("out-of-range id recorded %d", got)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	const (
		workers = 16
		perG    = 1000
	)

	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricCapabilityIssued)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricCapabilityIssued); got != workers*perG {
		t.Fatalf("Value = %d, want %d", got, workers*perG)
	}
}
