package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resume-parser/internal/llm"
	"resume-parser/internal/shared/telemetry"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// JSONMode requests response_format json_object.
	JSONMode bool
	// System is sent as the system message when non-empty.
	System string
}

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	jsonMode   bool
	system     string
	httpClient *http.Client
}

// NewClient constructs a chat completions client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		endpoint: base + "/chat/completions",
		jsonMode: opts.JSONMode,
		system:   opts.System,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// Complete returns the raw model response for the prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(c.system) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatRequest{
		Model:    c.model,
		Messages: messages,
	}
	if !isGPT5(c.model) {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	if c.jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", upstream(llm.ReasonGeneric, 0, 0, fmt.Errorf("openai request timeout: %w", err))
		}
		return "", upstream(llm.ReasonGeneric, 0, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstream(llm.ReasonGeneric, resp.StatusCode, 0, fmt.Errorf("read response: %w", err))
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)
	if resp.StatusCode >= 400 || parsed.Error != nil {
		detail := strings.TrimSpace(string(body))
		if parseErr == nil && parsed.Error != nil {
			detail = fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", upstream(classify(resp.StatusCode, parsed.Error), resp.StatusCode,
			retryAfter(resp.Header.Get("Retry-After")),
			fmt.Errorf("openai http status %d: %s", resp.StatusCode, detail))
	}
	if parseErr != nil {
		return "", upstream(llm.ReasonGeneric, resp.StatusCode, 0, fmt.Errorf("openai response parse: %w", parseErr))
	}
	if len(parsed.Choices) == 0 {
		return "", upstream(llm.ReasonGeneric, resp.StatusCode, 0, errors.New("openai response missing choices"))
	}

	logUsage(c.model, parsed, time.Since(start))
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func upstream(reason llm.Reason, status int, retry time.Duration, err error) error {
	return &llm.UpstreamError{
		Provider:   providerName,
		Reason:     reason,
		StatusCode: status,
		RetryAfter: retry,
		Err:        err,
	}
}

func classify(status int, apiErr *apiError) llm.Reason {
	if apiErr != nil {
		code := strings.ToLower(fmt.Sprint(apiErr.Code))
		typ := strings.ToLower(apiErr.Type)
		switch {
		case code == "invalid_api_key" || typ == "authentication_error":
			return llm.ReasonAuth
		case code == "rate_limit_exceeded" || code == "insufficient_quota" || typ == "insufficient_quota":
			return llm.ReasonRateLimit
		}
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.ReasonAuth
	case http.StatusTooManyRequests:
		return llm.ReasonRateLimit
	default:
		return llm.ReasonGeneric
	}
}

func retryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func logUsage(model string, parsed chatResponse, elapsed time.Duration) {
	fields := map[string]any{
		"provider":    providerName,
		"model":       model,
		"duration_ms": elapsed.Milliseconds(),
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Completer = (*Client)(nil)
