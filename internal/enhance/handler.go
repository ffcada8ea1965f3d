package enhance

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/llm"
	"resume-parser/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc     *Service
	Timeout time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Timeout: 30 * time.Second}
}

// RegisterRoutes attaches enhance routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/enhance", h.enhance)
}

type enhanceRequest struct {
	Text string `json:"text"`
}

func (h *Handler) enhance(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Missing text", nil)
		return
	}

	ctx := c.Request.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	res, err := h.Svc.Enhance(ctx, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidText):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case llm.ReasonOf(err) == llm.ReasonRateLimit:
			retryAfter := llm.RetryAfterOf(err)
			if retryAfter <= 0 {
				retryAfter = 30 * time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			respond.Error(c, http.StatusTooManyRequests, "ai_rate_limited",
				"API rate limit reached. Please wait a moment and try again.", nil)
		case errors.Is(err, llm.ErrUpstreamUnavailable):
			respond.Error(c, http.StatusBadGateway, "ai_unavailable", "Failed to enhance text", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to enhance text", nil)
		}
		return
	}

	respond.OK(c, gin.H{"enhancedText": res.Text, "mode": res.Mode})
}
