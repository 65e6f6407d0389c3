package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/platform/logger"
)

// Metrics holds the service instruments. A nil *Metrics is valid and records
// nothing, so callers never check whether metrics are enabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	pipelines       *CounterVec
	pipelineLatency *HistogramVec
	progressFetches *CounterVec
	progressLatency *HistogramVec
	cacheLookups    *CounterVec

	sessionStores *Gauge
	sseClients    *Gauge
	redisUp       *Gauge
	dbOpenConns   *Gauge
	dbInUse       *Gauge
}

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// NewMetrics returns nil when enabled is false.
func NewMetrics(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	return &Metrics{
		apiRequests: NewCounterVec("lp_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("lp_api_request_duration_seconds", "API request latency by method/route/status.", []string{"method", "route", "status"}, latencyBuckets),
		apiInflight: NewGauge("lp_api_inflight_requests", "In-flight API requests."),

		pipelines:       NewCounterVec("lp_page_pipelines_total", "Page pipelines by page/outcome.", []string{"page", "outcome"}),
		pipelineLatency: NewHistogramVec("lp_page_pipeline_duration_seconds", "Page pipeline latency by page/outcome.", []string{"page", "outcome"}, latencyBuckets),
		progressFetches: NewCounterVec("lp_progress_fetches_total", "Background progress fetches by outcome.", []string{"outcome"}),
		progressLatency: NewHistogramVec("lp_progress_fetch_duration_seconds", "Background progress fetch latency by outcome.", []string{"outcome"}, latencyBuckets),
		cacheLookups:    NewCounterVec("lp_source_cache_lookups_total", "Source cache lookups by kind/result.", []string{"kind", "result"}),

		sessionStores: NewGauge("lp_session_stores", "Live session page stores."),
		sseClients:    NewGauge("lp_sse_clients", "Connected SSE clients."),
		redisUp:       NewGauge("lp_redis_up", "Redis connectivity (1=up, 0=down)."),
		dbOpenConns:   NewGauge("lp_db_open_connections", "Open database connections."),
		dbInUse:       NewGauge("lp_db_in_use_connections", "Database connections in use."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.pipelines, m.pipelineLatency, m.progressFetches, m.progressLatency, m.cacheLookups,
		m.sessionStores, m.sseClients, m.redisUp, m.dbOpenConns, m.dbInUse,
	}
	for _, iw := range writers {
		if err := iw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.apiRequests.Inc(method, route, code)
	m.apiLatency.Observe(dur.Seconds(), method, route, code)
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObservePipeline records one settled page pipeline.
func (m *Metrics) ObservePipeline(page, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.pipelines.Inc(page, outcome)
	m.pipelineLatency.Observe(dur.Seconds(), page, outcome)
}

// ObserveProgressFetch records one settled background progress fetch.
func (m *Metrics) ObserveProgressFetch(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.progressFetches.Inc(outcome)
	m.progressLatency.Observe(dur.Seconds(), outcome)
}

// ObserveCache records a source cache lookup ("hit", "miss", "error").
func (m *Metrics) ObserveCache(kind, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.Inc(kind, result)
}

func (m *Metrics) SetSessionStores(n int) {
	if m != nil {
		m.sessionStores.Set(float64(n))
	}
}

func (m *Metrics) SSEClientInc() {
	if m != nil {
		m.sseClients.Inc()
	}
}

func (m *Metrics) SSEClientDec() {
	if m != nil {
		m.sseClients.Dec()
	}
}

// CollectRedis pings rdb once and records the result.
func (m *Metrics) CollectRedis(ctx context.Context, log *logger.Logger, rdb *goredis.Client) {
	if m == nil || rdb == nil {
		return
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		m.redisUp.Set(0)
		if log != nil {
			log.Warn("metrics: redis ping failed", "error", err)
		}
		return
	}
	m.redisUp.Set(1)
}

// CollectDB records the connection pool stats of db.
func (m *Metrics) CollectDB(db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	m.dbOpenConns.Set(float64(stats.OpenConnections))
	m.dbInUse.Set(float64(stats.InUse))
}
