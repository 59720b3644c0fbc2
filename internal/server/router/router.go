package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	Analytics *handlers.AnalyticsHandler
	Catch     *handlers.CatchHandler
	Digest    *handlers.DigestHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	flocks := r.Group("/flocks/:flockId")
	flocks.GET("/performance", h.Analytics.Performance)
	flocks.GET("/feed-efficiency", h.Analytics.FeedEfficiency)
	flocks.GET("/shrinkage", h.Analytics.Shrinkage)
	flocks.GET("/catch-sessions", h.Catch.ListByFlock)

	r.POST("/density/recommendation", h.Analytics.DensityRecommendation)
	r.POST("/density/plan", h.Analytics.DensityPlan)

	sessions := r.Group("/catch-sessions")
	sessions.POST("", h.Catch.Start)
	sessions.GET("/:sessionId", h.Catch.Get)
	sessions.POST("/:sessionId/crates", h.Catch.AddCrate)
	sessions.DELETE("/:sessionId/crates/:crateNumber", h.Catch.DeleteCrate)
	sessions.POST("/:sessionId/batches", h.Catch.AddBatch)
	sessions.POST("/:sessionId/complete", h.Catch.Complete)
	r.DELETE("/catch-batches/:batchId", h.Catch.DeleteBatch)

	r.GET("/digest", h.Digest.Preview)
	r.POST("/digest/send", h.Digest.Send)
	r.POST("/send-message", h.Digest.SendMessage)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
