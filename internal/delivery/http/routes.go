package http

import (
	"github.com/buybuddy/backend/config"
	"github.com/buybuddy/backend/internal/domain"
	"github.com/buybuddy/backend/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router. collector and limiter
// may be nil to disable metrics and rate limiting (used in tests).
func SetupRouter(
	cfg *config.Config,
	handler *Handler,
	verifier domain.TokenVerifier,
	collector *metrics.Collector,
	limiter *RateLimiter,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if collector != nil {
		router.Use(MetricsMiddleware(collector))
	}
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	router.GET("/health", handler.HealthCheck)
	if collector != nil {
		router.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.Use(AuthMiddleware(verifier))
		{
			products.POST("/analyze", handler.AnalyzeProduct)
			products.POST("/save", handler.SaveProduct)
			products.GET("/saved", handler.ListSavedProducts)
			products.DELETE("/saved/:id", handler.DeleteSavedProduct)
		}
	}

	return router
}
