package resumes

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/llm"
	"resume-parser/internal/shared/server/respond"
)

const defaultRetryAfterSeconds = 30

// writeUpstreamError picks the status for a model failure from its reason.
func writeUpstreamError(c *gin.Context, err error) {
	switch llm.ReasonOf(err) {
	case llm.ReasonAuth:
		respond.Error(c, http.StatusServiceUnavailable, "ai_auth_failed",
			"AI service configuration error. Please contact support.", nil)
	case llm.ReasonRateLimit:
		seconds := defaultRetryAfterSeconds
		if hint := llm.RetryAfterOf(err); hint > 0 {
			seconds = int(math.Ceil(hint.Seconds()))
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		respond.Error(c, http.StatusTooManyRequests, "ai_rate_limited",
			"API rate limit reached. Please wait a moment and try again.", gin.H{"retryAfterSeconds": seconds})
	default:
		respond.Error(c, http.StatusBadGateway, "ai_unavailable", "Failed to process resume data. Please try again.", nil)
	}
}
