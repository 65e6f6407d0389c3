package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/http"
	httpH "github.com/yungbote/learnpages/internal/http/handlers"
	httpMW "github.com/yungbote/learnpages/internal/http/middleware"
	"github.com/yungbote/learnpages/internal/observability"
	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Learn    *httpH.LearnHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, clients Clients, services Services, sseHub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db, clients.Redis),
		Learn:    httpH.NewLearnHandler(services.Page),
		Realtime: httpH.NewRealtimeHandler(log, sseHub, services.Page, metrics),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	routerCfg := http.RouterConfig{
		Log:             log,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		Metrics:         metrics,
		AuthMiddleware:  middleware.Auth,
		LearnHandler:    handlers.Learn,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	}
	if cfg.Otel.Enabled {
		routerCfg.ServiceName = cfg.Otel.ServiceName
	}
	return http.NewServer(routerCfg)
}
