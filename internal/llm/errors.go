package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrUpstreamUnavailable matches every failure to obtain a model response.
var ErrUpstreamUnavailable = errors.New("upstream model unavailable")

// Reason narrows an upstream failure for the caller.
type Reason string

const (
	ReasonAuth      Reason = "auth"
	ReasonRateLimit Reason = "rate_limit"
	ReasonGeneric   Reason = "generic"
)

// UpstreamError describes a failed model call.
type UpstreamError struct {
	Provider   string
	Reason     Reason
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *UpstreamError) Error() string {
	provider := e.Provider
	if provider == "" {
		provider = "llm"
	}
	msg := fmt.Sprintf("%s: %s", provider, e.Reason)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// ReasonOf returns the reason of the first UpstreamError in err's chain, or "".
func ReasonOf(err error) Reason {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Reason
	}
	return ""
}

// RetryAfterOf returns the provider's retry hint, if any.
func RetryAfterOf(err error) time.Duration {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.RetryAfter
	}
	return 0
}
