package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"resume-parser/internal/llm"
)

func TestClassify(t *testing.T) {
	grpcAPIError := func(code codes.Code) error {
		apiErr, ok := apierror.FromError(status.Error(code, "upstream said no"))
		require.True(t, ok)
		return fmt.Errorf("generate: %w", apiErr)
	}
	httpAPIError := func(code int) error {
		apiErr, ok := apierror.FromError(&googleapi.Error{Code: code, Message: "upstream said no"})
		require.True(t, ok)
		return apiErr
	}

	tests := []struct {
		name   string
		err    error
		reason llm.Reason
		status int
	}{
		{"grpc unauthenticated", grpcAPIError(codes.Unauthenticated), llm.ReasonAuth, 0},
		{"grpc permission denied", grpcAPIError(codes.PermissionDenied), llm.ReasonAuth, 0},
		{"grpc resource exhausted", grpcAPIError(codes.ResourceExhausted), llm.ReasonRateLimit, 0},
		{"grpc unavailable", grpcAPIError(codes.Unavailable), llm.ReasonGeneric, 0},
		{"http forbidden", httpAPIError(http.StatusForbidden), llm.ReasonAuth, http.StatusForbidden},
		{"http too many requests", httpAPIError(http.StatusTooManyRequests), llm.ReasonRateLimit, http.StatusTooManyRequests},
		{"http internal", httpAPIError(http.StatusInternalServerError), llm.ReasonGeneric, http.StatusInternalServerError},
		{"bare grpc status", status.Error(codes.ResourceExhausted, "quota"), llm.ReasonRateLimit, 0},
		{"message mentions key", errors.New("googleapi: Error 400: API key not valid"), llm.ReasonAuth, 0},
		{"message mentions 429", errors.New("unexpected status 429"), llm.ReasonRateLimit, 0},
		{"blocked prompt", &genai.BlockedError{}, llm.ReasonGeneric, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err)
			require.ErrorIs(t, err, llm.ErrUpstreamUnavailable)
			assert.Equal(t, tc.reason, llm.ReasonOf(err))

			var upstream *llm.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, providerName, upstream.Provider)
			assert.Equal(t, tc.status, upstream.StatusCode)
		})
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"skills":`), genai.Text(`[]}`)}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"skills":[]}`, text)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(t.Context(), Options{})
	assert.Error(t, err)
}
