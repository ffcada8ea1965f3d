package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"resume-parser/internal/llm"
	"resume-parser/internal/shared/telemetry"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-1.5-flash"
)

// Options configures a Client.
type Options struct {
	APIKey string
	Model  string
	// JSONMode asks for an application/json response.
	JSONMode bool
	// System is sent as the system instruction when non-empty.
	System string
}

// Client implements llm.Completer for Google Gemini.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient creates a Gemini client configured for deterministic output.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	name := strings.TrimSpace(opts.Model)
	if name == "" {
		name = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(name)
	model.SetTemperature(0)
	if opts.JSONMode {
		model.ResponseMIMEType = "application/json"
	}
	if strings.TrimSpace(opts.System) != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(opts.System)}}
	}

	return &Client{client: client, model: model, modelName: name}, nil
}

// Complete returns the concatenated text parts of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", classify(err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &llm.UpstreamError{Provider: providerName, Reason: llm.ReasonGeneric, Err: err}
	}

	fields := map[string]any{
		"provider":    providerName,
		"model":       c.modelName,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return strings.TrimSpace(text), nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

var _ llm.Completer = (*Client)(nil)
