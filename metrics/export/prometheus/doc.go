// Package prometheus renders multiAuth engine metrics in Prometheus text
// exposition format.
//
// [NewExporter] wraps an Engine and exposes an [http.Handler] for a /metrics
// route. Counters are named multiauth_*_total. The one histogram is
// multiauth_validate_session_latency_seconds, present only when latency
// recording is enabled. Nothing is registered globally; callers mount the
// Handler themselves.
package prometheus
