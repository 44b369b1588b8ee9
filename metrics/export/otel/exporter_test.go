package otel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	multiAuth "github.com/MrEthical07/multiAuth"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// stubSource reports a fixed latency histogram and a login counter that can be
// bumped between collections.
type stubSource struct {
	logins  atomic.Uint64
	latency []uint64
}

func (s *stubSource) MetricsSnapshot() multiAuth.MetricsSnapshot {
	snap := multiAuth.MetricsSnapshot{
		Counters:   map[multiAuth.MetricID]uint64{multiAuth.MetricLoginSuccess: s.logins.Load()},
		Histograms: map[multiAuth.MetricID][]uint64{},
	}
	if s.latency != nil {
		snap.Histograms[multiAuth.MetricValidateLatency] = append([]uint64(nil), s.latency...)
	}
	return snap
}

func newMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

// points flattens collected int64 data points into name or name{le} keys.
func points(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]int64{}
	add := func(name string, attrs attribute.Set, v int64) {
		if le, ok := attrs.Value("le"); ok {
			name += "{" + le.AsString() + "}"
		}
		out[name] = v
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					add(m.Name, dp.Attributes, dp.Value)
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					add(m.Name, dp.Attributes, dp.Value)
				}
			}
		}
	}
	return out
}

func TestExporterObservesSnapshot(t *testing.T) {
	reader, mp := newMeter(t)
	src := &stubSource{latency: []uint64{2, 0, 1, 0, 0, 0, 0, 3}}
	src.logins.Store(3)

	exp, err := NewExporterFromSource(mp.Meter("multiauth"), src)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	defer exp.Close()

	got := points(t, reader)
	want := map[string]int64{
		"multiauth_login_success_total":                          3,
		"multiauth_logout_total":                                 0,
		"multiauth_validate_session_latency_seconds_bucket{0.005}": 2,
		"multiauth_validate_session_latency_seconds_bucket{0.025}": 3,
		"multiauth_validate_session_latency_seconds_bucket{+Inf}":  6,
		"multiauth_validate_session_latency_seconds_count":         6,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s = %d, want %d", name, got[name], v)
		}
	}

	src.logins.Add(2)
	if n := points(t, reader)["multiauth_login_success_total"]; n != 5 {
		t.Fatalf("login counter after bump = %d, want 5", n)
	}
}

func TestExporterOmitsLatencyWhenDisabled(t *testing.T) {
	reader, mp := newMeter(t)
	exp, err := NewExporterFromSource(mp.Meter("multiauth"), &stubSource{})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	defer exp.Close()

	got := points(t, reader)
	if _, ok := got["multiauth_validate_session_latency_seconds_count"]; ok {
		t.Fatal("latency observed while the histogram is disabled")
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, mp := newMeter(t)
	meter := mp.Meter("multiauth")

	if _, err := NewExporterFromSource(meter, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil source: got %v", err)
	}
	if _, err := NewExporterFromSource(nil, &stubSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("nil meter: got %v", err)
	}
	if _, err := NewExporter(meter, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil engine: got %v", err)
	}
}

func TestExporterCloseStopsObservation(t *testing.T) {
	reader, mp := newMeter(t)
	src := &stubSource{}
	src.logins.Store(1)

	exp, err := NewExporterFromSource(mp.Meter("multiauth"), src)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := points(t, reader)["multiauth_login_success_total"]; ok {
		t.Fatal("counter observed after Close")
	}
	var nilExp *Exporter
	if err := nilExp.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestExporterConcurrentCollect(t *testing.T) {
	reader, mp := newMeter(t)
	src := &stubSource{}
	exp, err := NewExporterFromSource(mp.Meter("multiauth"), src)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.logins.Add(1)
			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}()
	}
	wg.Wait()
}
