package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var durationBucketsMs = []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}

var (
	parseStartedTotal   atomic.Uint64
	parseCompletedTotal atomic.Uint64
	parseFailedTotal    = newCounterVec("kind")

	enhanceTotal = newCounterVec("mode")

	parseDuration   = newHistogram(durationBucketsMs)
	extractDuration = newHistogramVec("format", durationBucketsMs)
	modelDuration   = newHistogram(durationBucketsMs)
)

// IncParseStarted increments the started counter.
func IncParseStarted() {
	parseStartedTotal.Add(1)
}

// IncParseCompleted increments the completed counter.
func IncParseCompleted() {
	parseCompletedTotal.Add(1)
}

// IncParseFailed increments the failed counter for a failure kind.
func IncParseFailed(kind string) {
	parseFailedTotal.Inc(kind)
}

// IncEnhance counts a bullet rewrite by mode (model or rules).
func IncEnhance(mode string) {
	enhanceTotal.Inc(mode)
}

// ObserveParseDuration records a full pipeline run.
func ObserveParseDuration(d time.Duration) {
	parseDuration.Observe(millis(d))
}

// ObserveExtractDuration records the text extraction step for one format.
func ObserveExtractDuration(format string, d time.Duration) {
	extractDuration.With(format).Observe(millis(d))
}

// ObserveModelDuration records the language-model round trip.
func ObserveModelDuration(d time.Duration) {
	modelDuration.Observe(millis(d))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "parse_started_total", "Total resume parses started", parseStartedTotal.Load())
	writeCounter(&buf, "parse_completed_total", "Total resume parses completed", parseCompletedTotal.Load())
	writeCounterVec(&buf, "parse_failed_total", "Total resume parses failed by kind", parseFailedTotal)
	writeCounterVec(&buf, "enhance_total", "Total bullet rewrites by mode", enhanceTotal)
	writeHistogram(&buf, "parse_duration_ms", "Resume parse duration in milliseconds", "", parseDuration.Snapshot())
	for _, label := range extractDuration.Labels() {
		writeHistogram(&buf, "extract_duration_ms", "Text extraction duration in milliseconds",
			fmt.Sprintf("%s=%q", extractDuration.label, label), extractDuration.With(label).Snapshot())
	}
	writeHistogram(&buf, "model_duration_ms", "Language model call duration in milliseconds", "", modelDuration.Snapshot())
	return buf.String()
}

func millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d.Microseconds()) / 1000.0
}

type counterVec struct {
	label  string
	mu     sync.Mutex
	values map[string]*atomic.Uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: make(map[string]*atomic.Uint64)}
}

func (v *counterVec) Inc(value string) {
	v.mu.Lock()
	c, ok := v.values[value]
	if !ok {
		c = new(atomic.Uint64)
		v.values[value] = c
	}
	v.mu.Unlock()
	c.Add(1)
}

func (v *counterVec) snapshot() map[string]uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	for k, c := range v.values {
		out[k] = c.Load()
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

type histogramVec struct {
	label   string
	buckets []float64
	mu      sync.Mutex
	values  map[string]*histogram
}

func newHistogramVec(label string, buckets []float64) *histogramVec {
	return &histogramVec{label: label, buckets: buckets, values: make(map[string]*histogram)}
}

func (v *histogramVec) With(value string) *histogram {
	v.mu.Lock()
	defer v.mu.Unlock()
	h, ok := v.values[value]
	if !ok {
		h = newHistogram(v.buckets)
		v.values[value] = h
	}
	return h
}

func (v *histogramVec) Labels() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.values))
	for k := range v.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, vec *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	values := vec.snapshot()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, vec.label, k, values[k])
	}
}

// writeHistogram emits cumulative buckets; labels is an optional "k=\"v\"" prefix.
func writeHistogram(buf *bytes.Buffer, name, help, labels string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	sep := ""
	suffix := ""
	if labels != "" {
		sep = ","
		suffix = "{" + labels + "}"
	}
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{%s%sle=\"%s\"} %d\n", name, labels, sep, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{%s%sle=\"+Inf\"} %d\n", name, labels, sep, snap.count)
	fmt.Fprintf(buf, "%s_sum%s %s\n", name, suffix, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count%s %d\n", name, suffix, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
