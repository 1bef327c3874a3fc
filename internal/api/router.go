package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mesikahq/spitalverse/internal/metrics"
	"github.com/mesikahq/spitalverse/internal/middleware"
)

type RouterConfig struct {
	CORSOrigins    []string
	RateLimit      rate.Limit
	Burst          int
	RequestTimeout time.Duration
}

type Router struct {
	handler *Handler
	config  RouterConfig
}

func NewRouter(handler *Handler, cfg RouterConfig) *Router {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = rate.Limit(5)
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	return &Router{handler: handler, config: cfg}
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	origins := r.config.CORSOrigins
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (r *Router) SetupRouter(logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.RecoveryMiddleware(logger),
		middleware.LoggerMiddleware(logger),
		metrics.Middleware(),
		cors.New(r.corsConfig()),
	)

	router.GET("/health", r.handler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(r.config.RateLimit, r.config.Burst))
	if r.config.RequestTimeout > 0 {
		api.Use(middleware.TimeoutMiddleware(r.config.RequestTimeout))
	}
	{
		// Stateless assistant endpoints
		api.POST("/generate-summary", r.handler.GenerateSummaryStateless)
		api.POST("/health-tips", r.handler.HealthTipsStateless)
		api.POST("/symptom-checker", r.handler.SymptomCheckerStateless)

		profile := api.Group("/profile")
		{
			profile.GET("", r.handler.GetProfile)
			profile.PATCH("", r.handler.UpdateProfile)
		}

		medications := api.Group("/medications")
		{
			medications.GET("", r.handler.ListMedications)
			medications.POST("", r.handler.CreateMedication)
			medications.PATCH("/:id", r.handler.UpdateMedication)
			medications.POST("/:id/complete", r.handler.CompleteMedication)
			medications.DELETE("/:id", r.handler.DeleteMedication)
		}

		api.GET("/labs/catalog", r.handler.GetLabCatalog)
		labReports := api.Group("/lab-reports")
		{
			labReports.GET("", r.handler.ListLabReports)
			labReports.POST("", r.handler.CreateLabReport)
			labReports.DELETE("/:id", r.handler.DeleteLabReport)
		}

		appointments := api.Group("/appointments")
		{
			appointments.GET("", r.handler.ListAppointments)
			appointments.POST("", r.handler.CreateAppointment)
			appointments.PATCH("/:id", r.handler.UpdateAppointment)
			appointments.DELETE("/:id", r.handler.DeleteAppointment)
		}

		documents := api.Group("/documents")
		{
			documents.GET("", r.handler.ListDocuments)
			documents.POST("", r.handler.CreateDocument)
			documents.GET("/:id/content", r.handler.GetDocumentContent)
			documents.DELETE("/:id", r.handler.DeleteDocument)
		}

		summaries := api.Group("/summaries")
		{
			summaries.GET("", r.handler.ListSummaries)
			summaries.POST("", r.handler.GenerateSummary)
		}
		api.GET("/tips", r.handler.HealthTips)
		api.POST("/symptoms", r.handler.CheckSymptoms)
		api.GET("/dashboard", r.handler.GetDashboard)
		api.GET("/reminders", r.handler.ListReminders)

		api.GET("/export", r.handler.Export)
		api.POST("/import", r.handler.Import)
		api.POST("/clear", r.handler.Clear)

		api.GET("/audit/events", r.handler.QueryAuditEvents)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
