package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"billextract/internal/config"
	_ "billextract/internal/docs" // registers the swagger spec
	"billextract/internal/handler"
	"billextract/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log zerolog.Logger,
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
	infoH *handler.InfoHandler,
	statsH *handler.StatsHandler,
) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		handler.RespondFailure(c, http.StatusNotFound, handler.MsgEndpointNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handler.RespondFailure(c, http.StatusMethodNotAllowed, handler.MsgMethodNotAllowed)
	})

	// Health checks
	r.GET("/", infoH.Info)
	r.GET("/health", healthH.Health)
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limited := r.Group("")
	if cfg.RateLimit.Enabled {
		limited.Use(middleware.RateLimit(middleware.NewClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)))
	}
	limited.POST("/extract-bill-data", extractionH.ExtractBillData)

	v1 := limited.Group("/api/v1")
	v1.POST("/extract/text", extractionH.ExtractText)
	v1.POST("/extract/debug", extractionH.Debug)
	v1.GET("/stats", statsH.GetStats)

	return r
}
