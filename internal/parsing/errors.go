package parsing

import (
	"context"
	"errors"
	"fmt"

	"resume-parser/internal/extract"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
)

// Stage is a step of one pipeline run.
type Stage int

const (
	StageReceived Stage = iota
	StageSniffed
	StageExtracted
	StageRequested
	StageNormalized
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageSniffed:
		return "sniffed"
	case StageExtracted:
		return "extracted"
	case StageRequested:
		return "requested"
	case StageNormalized:
		return "normalized"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Kind classifies a failed run.
type Kind string

const (
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindExtractionFailed    Kind = "extraction_failed"
	KindEmptyDocument       Kind = "empty_document"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindMalformedResponse   Kind = "malformed_response"
	KindIncompleteResponse  Kind = "incomplete_response"
	KindCanceled            Kind = "canceled"
	KindTimeout             Kind = "timeout"
	KindInternal            Kind = "internal"
)

// Error is a failed run. Stage is the last stage reached before the failure.
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse failed after %s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf maps any pipeline error, wrapped or not, to its Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, extract.ErrExtractionFailed):
		return KindExtractionFailed
	case errors.Is(err, extract.ErrEmptyDocument):
		return KindEmptyDocument
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, resume.ErrIncompleteResponse):
		return KindIncompleteResponse
	case errors.Is(err, resume.ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}
