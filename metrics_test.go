package multiAuth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsRecordNothingWhenDisabled(t *testing.T) {
	for name, m := range map[string]*Metrics{
		"nil":      nil,
		"disabled": NewMetrics(MetricsConfig{Enabled: false, EnableLatencyHistograms: true}),
	} {
		t.Run(name, func(t *testing.T) {
			m.Inc(MetricLoginSuccess)
			m.Observe(MetricValidateLatency, time.Millisecond)

			if got := m.Value(MetricLoginSuccess); got != 0 {
				t.Fatalf("Value = %d, want 0", got)
			}
			snap := m.Snapshot()
			if snap.Counters == nil || snap.Histograms == nil {
				t.Fatal("snapshot maps must be non-nil")
			}
			if len(snap.Counters)+len(snap.Histograms) != 0 {
				t.Fatalf("snapshot not empty: %+v", snap)
			}
		})
	}
}

func TestMetricsCountersAreIndependent(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricOTPIssued)
	m.Inc(MetricOTPIssued)
	m.Inc(MetricLogoutAll)
	m.Inc(MetricValidateLatency) // not a counter

	snap := m.Snapshot()
	if snap.Counters[MetricOTPIssued] != 2 || snap.Counters[MetricLogoutAll] != 1 {
		t.Fatalf("counters = %v", snap.Counters)
	}
	if _, ok := snap.Counters[MetricValidateLatency]; ok {
		t.Fatal("latency reported as a counter")
	}
	if len(snap.Counters) != int(MetricValidateLatency) {
		t.Fatalf("snapshot has %d counters, want %d", len(snap.Counters), MetricValidateLatency)
	}
	if len(snap.Histograms) != 0 {
		t.Fatal("histogram reported while latency recording is off")
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	for _, tc := range []struct {
		d      time.Duration
		bucket int
	}{
		{0, 0},
		{5*time.Millisecond + 900*time.Microsecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{101 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{2 * time.Second, 7},
	} {
		if got := latencyBucket(tc.d); got != tc.bucket {
			t.Errorf("latencyBucket(%v) = %d, want %d", tc.d, got, tc.bucket)
		}
		m.Observe(MetricValidateLatency, tc.d)
	}
	m.Observe(MetricLoginSuccess, time.Millisecond)

	snap := m.Snapshot()
	want := []uint64{2, 1, 1, 1, 1, 1, 1, 1}
	got := snap.Histograms[MetricValidateLatency]
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("buckets = %v, want %v", got, want)
		}
	}
	if len(snap.Histograms) != 1 {
		t.Fatalf("unexpected histograms: %v", snap.Histograms)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	const workers, each = 12, 1500
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				m.Inc(MetricSessionCreated)
				m.Observe(MetricValidateLatency, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricSessionCreated); got != workers*each {
		t.Fatalf("sessions created = %d, want %d", got, workers*each)
	}
	if got := m.Snapshot().Histograms[MetricValidateLatency][0]; got != workers*each {
		t.Fatalf("first bucket = %d, want %d", got, workers*each)
	}
}

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricSessionCreated)
		}
	})
}
