package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/db"
	"github.com/yungbote/learnpages/internal/http"
	"github.com/yungbote/learnpages/internal/observability"
	"github.com/yungbote/learnpages/internal/platform/clock"
	"github.com/yungbote/learnpages/internal/platform/envutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/realtime"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics
	Clock    *clock.Ticker

	dbService    *db.Service
	server       *http.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the logger from LEARNPAGES_LOG_MODE before the config is
// read.
func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LEARNPAGES_LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB opens the configured database without wiring anything else.
func OpenDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.Open(log, db.Config{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		Debug:        cfg.DB.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	return svc, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Env,
		Enabled:     cfg.Otel.Enabled,
		Endpoint:    cfg.Otel.Endpoint,
		SampleRatio: cfg.Otel.SampleRatio,
	})

	dbService, err := OpenDB(log, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := dbService.AutoMigrateAll(); err != nil {
			_ = dbService.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	theDB := dbService.DB()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	metrics := observability.NewMetrics(cfg.Metrics.Enabled)
	ticker := clock.NewTicker(clock.System{}, cfg.Clock.Interval)
	ssehub := realtime.NewSSEHub(log)

	reposet := wireRepos(theDB, log)
	src := wireSources(log, cfg, reposet, clients, metrics)
	serviceset, err := wireServices(log, cfg, src, ticker, ssehub, clients, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, clients, serviceset, ssehub, metrics)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		Clock:        ticker,
		dbService:    dbService,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background loops: the clock ticker with its session
// sweep and gauges, plus the redis publish and forward loops when redis is
// configured.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	idle := a.Cfg.Pages.SessionIdleTTL
	a.Clock.OnTick(func(time.Time) {
		if idle > 0 {
			if n := a.Services.Registry.Sweep(idle); n > 0 {
				a.Log.Debug("swept idle session stores", "count", n)
			}
		}
		a.Metrics.SetSessionStores(a.Services.Registry.Len())
		a.Metrics.CollectDB(a.DB)
		a.Metrics.CollectRedis(ctx, a.Log, a.Clients.Redis)
	})
	a.Clock.Start(ctx)

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		go a.Services.Publisher.Run(ctx)
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.HTTP.Addr
	}
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clock != nil {
		a.Clock.Stop()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("db close", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
