package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnpages/internal/http/handlers"
	httpMW "github.com/yungbote/learnpages/internal/http/middleware"
	"github.com/yungbote/learnpages/internal/observability"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthMiddleware  *httpMW.AuthMiddleware
	LearnHandler    *httpH.LearnHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	learn := r.Group("/api/learn")
	{
		if cfg.AuthMiddleware != nil {
			learn.Use(cfg.AuthMiddleware.OptionalAuth())
		}
		learn.Use(httpMW.RequestLogger(cfg.Log))

		if cfg.LearnHandler != nil {
			learn.GET("/classes", cfg.LearnHandler.ListClasses)
			learn.GET("/classes/:id", cfg.LearnHandler.GetClass)
			learn.GET("/lessons/:id", cfg.LearnHandler.GetLesson)
			learn.GET("/lessons/:id/resources/:index", cfg.LearnHandler.GetLessonResource)
			learn.GET("/state", cfg.LearnHandler.GetState)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			learn.GET("/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
