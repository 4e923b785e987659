package app

import (
	"context"

	"gorm.io/gorm"

	apphttp "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http"
	httpH "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/handlers"
	httpMW "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/middleware"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Decision *httpH.DecisionHandler
	Me       *httpH.MeHandler
	Realtime *httpH.RealtimeHandler
}

type dbPinger struct{ db *gorm.DB }

func (p dbPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svc Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(dbPinger{db: db}),
		Decision: httpH.NewDecisionHandlerWithDeps(httpH.DecisionHandlerDeps{
			Log:         log,
			Workflow:    svc.Workflow,
			Reflections: svc.Reflections,
		}),
		Me:       httpH.NewMeHandler(svc.Preferences, svc.Entitlement),
		Realtime: httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			SecretKey: cfg.JWTSecretKey,
			Issuer:    cfg.JWTIssuer,
		}),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		Metrics:         observability.NewHTTPMetrics(),
		AuthMiddleware:  middleware.Auth,
		DecisionHandler: handlers.Decision,
		MeHandler:       handlers.Me,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	})
}
