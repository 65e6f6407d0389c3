package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "learnpages.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(logger.Nop(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http.addr: want=:8080 got=%q", cfg.HTTP.Addr)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("db.driver: want=sqlite got=%q", cfg.DB.Driver)
	}
	if cfg.Clock.Interval != 10*time.Second {
		t.Fatalf("clock.interval: want=10s got=%s", cfg.Clock.Interval)
	}
	if cfg.Pages.ProgressTimeout != 30*time.Second {
		t.Fatalf("pages.progress_timeout: want=30s got=%s", cfg.Pages.ProgressTimeout)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis.addr: want empty got=%q", cfg.Redis.Addr)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":7000"
db:
  driver: postgres
  dsn: "host=db"
cache:
  ttl: 2m
i18n:
  default_locale: fr
`)
	t.Setenv("LEARNPAGES_HTTP_ADDR", ":9000")
	t.Setenv("LEARNPAGES_AUTH_ACCESS_TTL", "1h")

	cfg, err := LoadConfig(logger.Nop(), path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Fatalf("env should win: want=:9000 got=%q", cfg.HTTP.Addr)
	}
	if cfg.DB.Driver != "postgres" || cfg.DB.DSN != "host=db" {
		t.Fatalf("db: got=%+v", cfg.DB)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Fatalf("cache.ttl: want=2m got=%s", cfg.Cache.TTL)
	}
	if cfg.Auth.AccessTTL != time.Hour {
		t.Fatalf("auth.access_ttl: want=1h got=%s", cfg.Auth.AccessTTL)
	}
	if cfg.I18n.DefaultLocale != "fr" {
		t.Fatalf("i18n.default_locale: want=fr got=%q", cfg.I18n.DefaultLocale)
	}
}

func TestLoadConfigConfigEnv(t *testing.T) {
	t.Setenv("LEARNPAGES_CONFIG", writeConfig(t, "redis:\n  addr: \"localhost:6379\"\n"))
	cfg, err := LoadConfig(logger.Nop(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis.addr: want=localhost:6379 got=%q", cfg.Redis.Addr)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	if _, err := LoadConfig(logger.Nop(), writeConfig(t, "http: [")); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}

func TestAppServesWithoutRedis(t *testing.T) {
	cfg, err := LoadConfig(logger.Nop(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.DB.DSN = "file:" + filepath.Join(t.TempDir(), "app.db") + "?_foreign_keys=off"
	cfg.Clock.Interval = 10 * time.Millisecond
	cfg.Pages.SessionIdleTTL = time.Millisecond

	a, err := New(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if a.Clients.Redis != nil || a.Clients.SSEBus != nil {
		t.Fatalf("redis clients should be nil without redis.addr")
	}
	created := make(chan struct{}, 1)
	a.Services.Registry.OnNewStore(func(uuid.UUID, *pages.Store) {
		created <- struct{}{}
	})
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/learn/classes", nil)
	req.Header.Set("X-Session-Id", "7b0b8e0e-6d55-4a4e-9d1f-3f8a1b1e2c3d")
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("classes: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	select {
	case <-created:
	default:
		t.Fatalf("request should have created a session store")
	}

	deadline := time.Now().Add(2 * time.Second)
	for a.Services.Registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("idle session store was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(logger.Nop(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http.addr: want=:8080 got=%q", cfg.HTTP.Addr)
	}
}
