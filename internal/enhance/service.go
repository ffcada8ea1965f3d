package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"resume-parser/internal/llm"
	"resume-parser/internal/shared/metrics"
	"resume-parser/internal/shared/telemetry"
)

const (
	ModeModel = "model"
	ModeRules = "rules"

	MaxTextRunes = 2000
)

var ErrInvalidText = errors.New("invalid text")

// Result is one rewritten bullet and how it was produced.
type Result struct {
	Text string
	Mode string
}

// Service rewrites resume bullet points.
type Service struct {
	completer llm.Completer
}

// NewService uses completer when one is configured and the rule-based rewrite
// otherwise.
func NewService(completer llm.Completer) *Service {
	if _, placeholder := completer.(llm.PlaceholderClient); placeholder {
		completer = nil
	}
	return &Service{completer: completer}
}

// Mode reports which rewrite strategy the service uses.
func (s *Service) Mode() string {
	if s.completer == nil {
		return ModeRules
	}
	return ModeModel
}

// Enhance rewrites one bullet point.
func (s *Service) Enhance(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, fmt.Errorf("%w: text is required", ErrInvalidText)
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return Result{}, fmt.Errorf("%w: text exceeds %d characters", ErrInvalidText, MaxTextRunes)
	}

	mode := s.Mode()
	metrics.IncEnhance(mode)
	if s.completer == nil {
		return Result{Text: RewriteWithRules(text), Mode: mode}, nil
	}

	reply, err := s.completer.Complete(ctx, llm.BuildEnhancePrompt(text))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		telemetry.Warn("enhance.failed", map[string]any{
			"reason": string(llm.ReasonOf(err)),
			"error":  err,
		})
		if !errors.Is(err, llm.ErrUpstreamUnavailable) {
			err = &llm.UpstreamError{Reason: llm.ReasonGeneric, Err: err}
		}
		return Result{}, err
	}

	enhanced := cleanReply(reply)
	if enhanced == "" {
		return Result{}, &llm.UpstreamError{Reason: llm.ReasonGeneric, Err: errors.New("empty enhancement")}
	}
	return Result{Text: enhanced, Mode: mode}, nil
}

// cleanReply drops the quotes models tend to echo from the prompt.
func cleanReply(reply string) string {
	out := strings.TrimSpace(reply)
	for _, q := range []string{`"`, "'", "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if len(out) >= len(q)+len(closing) && strings.HasPrefix(out, q) && strings.HasSuffix(out, closing) {
			out = strings.TrimSpace(out[len(q) : len(out)-len(closing)])
		}
	}
	return out
}
