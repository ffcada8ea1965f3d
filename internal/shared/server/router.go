package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/enhance"
	"resume-parser/internal/resumes"
	"resume-parser/internal/services/health"
	"resume-parser/internal/shared/config"
	"resume-parser/internal/shared/metrics"
	"resume-parser/internal/shared/server/middleware"
)

const (
	rateGroupParse   = "PARSE"
	rateGroupEnhance = "ENHANCE"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config  config.Config
	Health  *health.Handler
	Resumes *resumes.Handler
	Enhance *enhance.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimitConfig(deps.Config)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	if deps.Health != nil {
		deps.Health.RegisterRoutes(api)
	}
	api.GET("/me", meHandler)
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Enhance != nil {
		deps.Enhance.RegisterRoutes(api)
	}

	return r
}

// rateLimitConfig limits the model-backed routes per principal. Other routes
// are not limited.
func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	perMin := cfg.RateLimitParsePerMin
	if perMin <= 0 {
		perMin = 10
	}
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			rateGroupParse:   {Rate: float64(perMin) / 60, Burst: perMin},
			rateGroupEnhance: {Rate: float64(perMin*3) / 60, Burst: perMin * 3},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method != http.MethodPost {
				return ""
			}
			switch c.FullPath() {
			case "/api/v1/resumes/parse":
				return rateGroupParse
			case "/api/v1/enhance":
				return rateGroupEnhance
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
