package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medassist-backend/internal/config"
	"medassist-backend/internal/metrics"
)

func NewRouter(cfg *config.Config, h *MedicalHandler, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(Metrics(m))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}))

	router.GET("/", h.Hello)
	router.GET("/health", h.Health)
	if cfg.Metrics.Enabled && m != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	limited := router.Group("/")
	if cfg.RateLimit.Enabled {
		limited.Use(RateLimit(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst))
	}

	limited.POST("/MedicalHistoryPdf", h.AnalyzeHistory)
	limited.POST("/chat", h.Chat)

	api := limited.Group("/api")
	{
		api.POST("/analyze", h.AnalyzeHistory)
		api.POST("/chat", h.Chat)
		api.GET("/session/:session_id", h.GetSession)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Not found")
	})

	return router
}
