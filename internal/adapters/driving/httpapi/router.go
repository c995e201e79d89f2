package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// RouterConfig holds the services the router exposes.
type RouterConfig struct {
	Proposal driving.ProposalService

	// TracerProvider receives a server span per request. Nil selects the
	// global provider.
	TracerProvider trace.TracerProvider
}

// tracedService names the server in request spans.
const tracedService = "bidflow"

// NewRouter builds the API engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	var traceOpts []otelgin.Option
	if cfg.TracerProvider != nil {
		traceOpts = append(traceOpts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	router.Use(gin.Recovery(), otelgin.Middleware(tracedService, traceOpts...), requestLogger())
	router.MaxMultipartMemory = MaxUploadBytes

	proposals := NewProposalHandler(cfg.Proposal)

	router.GET("/healthz", HealthCheck)
	v1 := router.Group("/v1")
	{
		v1.POST("/extract", proposals.Extract)
		v1.POST("/proposal", proposals.Propose)
		v1.GET("/profile", proposals.Profile)
	}

	return router
}

// HealthCheck handles GET /healthz.
func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// requestLogger logs one line per request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
}
