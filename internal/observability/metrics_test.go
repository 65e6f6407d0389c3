package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObservePipeline("ALL_CLASSES", "ok", time.Millisecond)
	m.ObserveCache("classroom", "hit")
	m.SetSessionStores(3)

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
	if NewMetrics(false) != nil {
		t.Fatalf("disabled metrics should be nil")
	}
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics(true)
	m.ObservePipeline("LESSON_PLAYLIST", "ok", 30*time.Millisecond)
	m.ObservePipeline("LESSON_PLAYLIST", "ok", 2*time.Second)
	m.ObserveCache("classroom", "miss")
	m.SSEClientInc()

	if got := m.pipelines.Value("LESSON_PLAYLIST", "ok"); got != 2 {
		t.Fatalf("pipelines: want=2 got=%v", got)
	}

	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		`lp_page_pipelines_total{page="LESSON_PLAYLIST",outcome="ok"} 2`,
		`lp_page_pipeline_duration_seconds_bucket{page="LESSON_PLAYLIST",outcome="ok",le="0.05"} 1`,
		`lp_page_pipeline_duration_seconds_bucket{page="LESSON_PLAYLIST",outcome="ok",le="+Inf"} 2`,
		`lp_source_cache_lookups_total{kind="classroom",result="miss"} 1`,
		`lp_sse_clients 1`,
		`# TYPE lp_api_requests_total counter`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
}

func TestLabelString(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: got=%s", got)
	}
}
