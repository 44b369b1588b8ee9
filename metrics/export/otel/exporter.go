package otel

import (
	"context"
	"errors"
	"fmt"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is anything that can produce an engine metrics snapshot.
type MetricsSource interface {
	MetricsSnapshot() multiAuth.MetricsSnapshot
}

// Exporter publishes engine metrics as OTel observable instruments.
type Exporter struct {
	source       MetricsSource
	registration metric.Registration

	counters map[multiAuth.MetricID]metric.Int64ObservableCounter
	buckets  metric.Int64ObservableGauge
	samples  metric.Int64ObservableGauge
	bounds   [internaldefs.BucketCount]metric.ObserveOption
}

// NewExporter registers instruments on meter that read from engine.
func NewExporter(meter metric.Meter, engine *multiAuth.Engine) (*Exporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewExporterFromSource(meter, engine)
}

// NewExporterFromSource registers one observable counter per engine counter
// and two gauges for the latency histogram: cumulative bucket counts keyed by
// an "le" attribute, and the sample count.
func NewExporterFromSource(meter metric.Meter, source MetricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:   source,
		counters: make(map[multiAuth.MetricID]metric.Int64ObservableCounter, len(internaldefs.Counters)),
	}
	observables := make([]metric.Observable, 0, len(internaldefs.Counters)+2)

	for _, def := range internaldefs.Counters {
		c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = c
		observables = append(observables, c)
	}

	var err error
	bucketName := internaldefs.Latency.Name + "_bucket"
	e.buckets, err = meter.Int64ObservableGauge(bucketName,
		metric.WithDescription(internaldefs.Latency.Help+" Cumulative count per upper bound."))
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", bucketName, err)
	}
	countName := internaldefs.Latency.Name + "_count"
	e.samples, err = meter.Int64ObservableGauge(countName,
		metric.WithDescription(internaldefs.Latency.Help+" Sample count."))
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", countName, err)
	}
	observables = append(observables, e.buckets, e.samples)

	for i, b := range internaldefs.Buckets {
		e.bounds[i] = metric.WithAttributes(attribute.String("le", b.LE))
	}

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}

	raw, ok := snap.Histograms[internaldefs.Latency.ID]
	if !ok {
		return nil
	}
	cumulative := internaldefs.Cumulative(raw)
	for i, n := range cumulative {
		o.ObserveInt64(e.buckets, int64(n), e.bounds[i])
	}
	o.ObserveInt64(e.samples, int64(cumulative[internaldefs.BucketCount-1]))
	return nil
}

// Close unregisters the callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
