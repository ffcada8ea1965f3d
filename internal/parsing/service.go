package parsing

import (
	"context"
	"fmt"
	"time"

	"resume-parser/internal/extract"
	"resume-parser/internal/resume"
	"resume-parser/internal/shared/metrics"
	"resume-parser/internal/shared/telemetry"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc extract.Document) (string, error)
}

// StructuredRequester asks a language model for the structured form of text.
type StructuredRequester interface {
	RequestStructuredData(ctx context.Context, text string) (string, error)
}

// Timings holds per-step durations of a successful run.
type Timings struct {
	Extract time.Duration
	Model   time.Duration
	Total   time.Duration
}

// Result is the outcome of a successful run.
type Result struct {
	Record resume.Record
	Format extract.Format
	Text   string
	Timings
}

// Service runs the ingestion pipeline: sniff, extract, request, normalize.
// A run is a single pass with no retries and no shared state.
type Service struct {
	extractor TextExtractor
	requester StructuredRequester
	now       func() time.Time
}

func NewService(extractor TextExtractor, requester StructuredRequester) *Service {
	return &Service{extractor: extractor, requester: requester, now: time.Now}
}

type requestIDKey struct{}

// WithRequestID tags ctx so pipeline log lines carry the caller's request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type run struct {
	svc       *Service
	requestID string
	fileName  string
	format    extract.Format
	stage     Stage
	started   time.Time
	entered   time.Time
}

func (s *Service) begin(ctx context.Context, doc extract.Document) *run {
	now := s.now()
	return &run{
		svc:       s,
		requestID: requestIDFrom(ctx),
		fileName:  doc.FileName,
		stage:     StageReceived,
		started:   now,
		entered:   now,
	}
}

// advance moves the run to next and returns the time spent in the previous stage.
func (r *run) advance(next Stage) time.Duration {
	now := r.svc.now()
	spent := now.Sub(r.entered)
	telemetry.Debug("parse.stage", map[string]any{
		"request_id":  r.requestID,
		"format":      r.format.String(),
		"from":        r.stage.String(),
		"stage":       next.String(),
		"duration_ms": spent.Milliseconds(),
	})
	r.stage = next
	r.entered = now
	return spent
}

func (r *run) fail(err error) error {
	kind := KindOf(err)
	metrics.IncParseFailed(string(kind))
	telemetry.Warn("parse.failed", map[string]any{
		"request_id":  r.requestID,
		"file_name":   r.fileName,
		"format":      r.format.String(),
		"stage":       r.stage.String(),
		"kind":        string(kind),
		"duration_ms": r.svc.now().Sub(r.started).Milliseconds(),
		"error":       err,
	})
	return &Error{Stage: r.stage, Kind: kind, Err: err}
}

// Parse runs the full pipeline over doc. Failures are *Error values whose
// Kind names the failure; the wrapped cause is kept for errors.Is.
func (s *Service) Parse(ctx context.Context, doc extract.Document) (Result, error) {
	metrics.IncParseStarted()
	r := s.begin(ctx, doc)

	text, extractTime, err := s.extractText(ctx, r, doc)
	if err != nil {
		return Result{}, err
	}

	raw, err := s.requester.RequestStructuredData(ctx, text)
	if err != nil {
		return Result{}, r.fail(err)
	}
	modelTime := r.advance(StageRequested)
	metrics.ObserveModelDuration(modelTime)

	rec, err := resume.Normalize(raw)
	if err != nil {
		return Result{}, r.fail(err)
	}
	r.advance(StageNormalized)
	r.advance(StageDone)

	total := s.now().Sub(r.started)
	metrics.IncParseCompleted()
	metrics.ObserveParseDuration(total)
	telemetry.Info("parse.complete", map[string]any{
		"request_id":       r.requestID,
		"format":           r.format.String(),
		"chars":            len(text),
		"experience_count": len(rec.Experience),
		"skills_count":     len(rec.Skills),
		"extract_ms":       extractTime.Milliseconds(),
		"model_ms":         modelTime.Milliseconds(),
		"duration_ms":      total.Milliseconds(),
	})

	return Result{
		Record:  rec,
		Format:  r.format,
		Text:    text,
		Timings: Timings{Extract: extractTime, Model: modelTime, Total: total},
	}, nil
}

// ExtractText runs only the sniff and extraction steps.
func (s *Service) ExtractText(ctx context.Context, doc extract.Document) (string, extract.Format, error) {
	r := s.begin(ctx, doc)
	text, _, err := s.extractText(ctx, r, doc)
	return text, r.format, err
}

func (s *Service) extractText(ctx context.Context, r *run, doc extract.Document) (string, time.Duration, error) {
	r.format = extract.Sniff(doc.MediaType)
	if r.format == extract.FormatUnsupported {
		return "", 0, r.fail(fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, extract.NormalizeMediaType(doc.MediaType)))
	}
	r.advance(StageSniffed)

	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return "", 0, r.fail(err)
	}
	spent := r.advance(StageExtracted)
	metrics.ObserveExtractDuration(r.format.String(), spent)
	return text, spent, nil
}
