package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// NewRouter builds the gin engine with logging, recovery, the price API under
// /api/v1 and GET /healthz.
func NewRouter(handler *PriceHandler, log *zap.Logger, health HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(log), logger.Recovery(log))

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.FromContext(c.Request.Context()).Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}
