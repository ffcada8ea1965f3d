package llm

import (
	"context"
	"errors"
)

// Completer sends one prompt to a text-generation model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Requester asks a model for the structured form of a resume.
type Requester struct {
	client Completer
}

func NewRequester(client Completer) *Requester {
	return &Requester{client: client}
}

// RequestStructuredData returns the model's unvalidated reply for text. Every
// failure other than context cancellation matches ErrUpstreamUnavailable.
func (r *Requester) RequestStructuredData(ctx context.Context, text string) (string, error) {
	if r == nil || r.client == nil {
		return "", &UpstreamError{Reason: ReasonGeneric, Err: errors.New("no language model configured")}
	}
	raw, err := r.client.Complete(ctx, BuildResumeExtractionPrompt(text))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, ErrUpstreamUnavailable) {
			return "", err
		}
		return "", &UpstreamError{Reason: ReasonGeneric, Err: err}
	}
	return raw, nil
}

// PlaceholderClient stands in when no provider is configured.
type PlaceholderClient struct{}

// ErrNotConfigured is returned by PlaceholderClient.
var ErrNotConfigured = errors.New("no language model provider configured")

func (PlaceholderClient) Complete(context.Context, string) (string, error) {
	return "", &UpstreamError{Provider: "none", Reason: ReasonAuth, Err: ErrNotConfigured}
}
