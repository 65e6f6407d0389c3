package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/data/cache"
	"github.com/yungbote/learnpages/internal/data/sources"
	"github.com/yungbote/learnpages/internal/observability"
	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/clock"
	"github.com/yungbote/learnpages/internal/platform/i18n"
	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/realtime"
	"github.com/yungbote/learnpages/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Page         services.PageService
	Orchestrator *pages.Orchestrator
	Registry     *pages.Registry
	Publisher    *realtime.StorePublisher
}

func wireSources(log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) pages.Sources {
	src := pages.Sources{
		Classrooms: sources.NewClassroomSource(log, reposet.Classroom),
		Lessons:    sources.NewLessonSource(log, reposet.Lesson),
		Content:    sources.NewContentSource(log, reposet.ContentNode, cfg.Pages.BatchSize),
		Progress:   sources.NewProgressSource(log, reposet.Progress),
	}
	if clients.Redis == nil || !cfg.Cache.Enabled {
		return src
	}
	log.Info("Wrapping sources with redis cache", "ttl", cfg.Cache.TTL.String())
	opts := cache.Options{TTL: cfg.Cache.TTL}
	if metrics != nil {
		opts.Observer = metrics
	}
	return cache.Wrap(src, cache.NewRedisKV(clients.Redis, cfg.Cache.Prefix), opts, log)
}

func wireServices(log *logger.Logger, cfg Config, src pages.Sources, clk clock.Source, hub *realtime.SSEHub, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	tr, err := i18n.NewTranslator(cfg.I18n.DefaultLocale)
	if err != nil {
		return Services{}, fmt.Errorf("init translator: %w", err)
	}
	deps := pages.Deps{
		Sources:         src,
		Errors:          pages.NewStateErrorReporter(log),
		Translator:      tr,
		Log:             log,
		ProgressTimeout: cfg.Pages.ProgressTimeout,
	}
	if metrics != nil {
		deps.Observer = metrics
	}
	orch, err := pages.NewOrchestrator(deps)
	if err != nil {
		return Services{}, fmt.Errorf("init orchestrator: %w", err)
	}

	registry := pages.NewRegistry(clk)

	var pub realtime.Publisher
	if clients.SSEBus != nil {
		pub = clients.SSEBus
	}
	publisher, err := realtime.NewStorePublisher(log, hub, pub)
	if err != nil {
		return Services{}, fmt.Errorf("init store publisher: %w", err)
	}
	registry.OnNewStore(func(sessionID uuid.UUID, st *pages.Store) {
		publisher.Attach(sessionID, st)
	})

	pageService, err := services.NewPageService(log, orch, registry)
	if err != nil {
		return Services{}, fmt.Errorf("init page service: %w", err)
	}
	authService, err := services.NewAuthService(log, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	return Services{
		Auth:         authService,
		Page:         pageService,
		Orchestrator: orch,
		Registry:     registry,
		Publisher:    publisher,
	}, nil
}
