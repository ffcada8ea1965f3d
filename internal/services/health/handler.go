package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/shared/server/respond"
)

// Handler exposes liveness and readiness probes.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches health routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		respond.OK(c, h.Svc.Status())
	})
	rg.GET("/health/ready", func(c *gin.Context) {
		report := h.Svc.Ready(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
}
