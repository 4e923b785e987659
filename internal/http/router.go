package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/handlers"
	httpMW "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/middleware"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.HTTPMetrics

	AuthMiddleware  *httpMW.AuthMiddleware
	DecisionHandler *httpH.DecisionHandler
	MeHandler       *httpH.MeHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Decisions
		if cfg.DecisionHandler != nil {
			protected.POST("/decisions", cfg.DecisionHandler.Create)
			protected.GET("/decisions", cfg.DecisionHandler.List)
			protected.GET("/decisions/:id", cfg.DecisionHandler.Get)
			protected.PATCH("/decisions/:id/fields", cfg.DecisionHandler.UpdateFields)
			protected.POST("/decisions/:id/advance", cfg.DecisionHandler.Advance)
			protected.POST("/decisions/:id/analyze/:stage", cfg.DecisionHandler.Analyze)
			protected.POST("/decisions/:id/lock", cfg.DecisionHandler.Lock)
			protected.GET("/decisions/:id/score", cfg.DecisionHandler.Score)
			protected.GET("/decisions/:id/reflections", cfg.DecisionHandler.ListReflections)
			protected.POST("/decisions/:id/reflections", cfg.DecisionHandler.CreateReflection)
		}

		// User (Me)
		if cfg.MeHandler != nil {
			protected.GET("/me/preferences", cfg.MeHandler.GetPreferences)
			protected.PATCH("/me/preferences", cfg.MeHandler.PatchPreferences)
			protected.GET("/me/entitlement", cfg.MeHandler.GetEntitlement)
		}
	}

	return r
}
