package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf bytes.Buffer
	writeHistogram(&buf, "x_ms", "test", "", h.Snapshot())
	out := buf.String()

	for _, want := range []string{
		`x_ms_bucket{le="10"} 1`,
		`x_ms_bucket{le="100"} 2`,
		`x_ms_bucket{le="+Inf"} 3`,
		`x_ms_sum 555`,
		`x_ms_count 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderIncludesLabelledSeries(t *testing.T) {
	IncParseStarted()
	IncParseFailed("empty_document")
	IncEnhance("rules")
	ObserveExtractDuration("pdf", 20*time.Millisecond)

	out := Render()
	for _, want := range []string{
		"parse_started_total ",
		`parse_failed_total{kind="empty_document"}`,
		`enhance_total{mode="rules"}`,
		`extract_duration_ms_bucket{format="pdf",le="50"}`,
		`extract_duration_ms_count{format="pdf"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
