package prometheus

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/metrics/export/internaldefs"
)

// ContentType is the text exposition format served by Handler.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// MetricsSource is anything that can produce an engine metrics snapshot.
type MetricsSource interface {
	MetricsSnapshot() multiAuth.MetricsSnapshot
}

// Exporter renders engine metrics in Prometheus text exposition format.
type Exporter struct {
	source MetricsSource
}

// NewExporter returns an Exporter reading from engine.
func NewExporter(engine *multiAuth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource returns an Exporter reading from source.
func NewExporterFromSource(source MetricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the current metrics over HTTP.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		e.Encode(&buf)
		w.Header().Set("Content-Type", ContentType)
		_, _ = buf.WriteTo(w)
	})
}

// Render returns the current metrics. It is empty when metrics are disabled.
func (e *Exporter) Render() string {
	var buf bytes.Buffer
	e.Encode(&buf)
	return buf.String()
}

// Encode writes the current metrics to w. Nothing is written when metrics
// are disabled.
func (e *Exporter) Encode(w io.Writer) {
	if e == nil || e.source == nil {
		return
	}
	snap := e.source.MetricsSnapshot()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 {
		return
	}

	for _, def := range internaldefs.Counters {
		header(w, def, "counter")
		fmt.Fprintf(w, "%s %d\n", def.Name, snap.Counters[def.ID])
	}

	raw, ok := snap.Histograms[internaldefs.Latency.ID]
	if !ok {
		return
	}
	name := internaldefs.Latency.Name
	cumulative := internaldefs.Cumulative(raw)
	header(w, internaldefs.Latency, "histogram")
	for i, b := range internaldefs.Buckets {
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", name, b.LE, cumulative[i])
	}
	fmt.Fprintf(w, "%s_count %d\n", name, cumulative[internaldefs.BucketCount-1])
	// Bucket counts carry no sample values.
	fmt.Fprintf(w, "%s_sum 0\n", name)
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func header(w io.Writer, def internaldefs.Def, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", def.Name, helpEscaper.Replace(def.Help), def.Name, kind)
}
