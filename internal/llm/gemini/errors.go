package gemini

import (
	"errors"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"resume-parser/internal/llm"
)

// classify wraps a GenerateContent failure in an llm.UpstreamError. Structured
// status codes win; the message is only consulted when none is available.
func classify(err error) error {
	out := &llm.UpstreamError{Provider: providerName, Reason: llm.ReasonGeneric, Err: err}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			out.StatusCode = code
			out.Reason = reasonForHTTP(code)
		} else if st := apiErr.GRPCStatus(); st != nil {
			out.Reason = reasonForGRPC(st.Code())
		}
		if apiErr.Reason() == "API_KEY_INVALID" {
			out.Reason = llm.ReasonAuth
		}
		return out
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		out.Reason = reasonForGRPC(st.Code())
		return out
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api_key") || strings.Contains(msg, "api key") || strings.Contains(msg, "authentication"):
		out.Reason = llm.ReasonAuth
	case strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429") || strings.Contains(msg, "quota"):
		out.Reason = llm.ReasonRateLimit
	}
	return out
}

func reasonForHTTP(code int) llm.Reason {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.ReasonAuth
	case http.StatusTooManyRequests:
		return llm.ReasonRateLimit
	default:
		return llm.ReasonGeneric
	}
}

func reasonForGRPC(code codes.Code) llm.Reason {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return llm.ReasonAuth
	case codes.ResourceExhausted:
		return llm.ReasonRateLimit
	default:
		return llm.ReasonGeneric
	}
}
