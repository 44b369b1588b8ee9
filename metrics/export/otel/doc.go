// Package otel exports multiAuth engine metrics through OpenTelemetry.
//
// [NewExporter] registers an Int64ObservableCounter per engine counter. The
// ValidateSession latency histogram becomes two gauges: cumulative bucket
// counts with an "le" attribute, and the sample count. One callback reads
// [multiAuth.Engine.MetricsSnapshot] on each collection cycle.
//
// Callers own the MeterProvider and pass in a Meter.
package otel
