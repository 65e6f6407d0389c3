package http

import (
	"bufio"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/data/repos/testutil"
	"github.com/yungbote/learnpages/internal/data/sources"
	types "github.com/yungbote/learnpages/internal/domain/learn"
	httpH "github.com/yungbote/learnpages/internal/http/handlers"
	httpMW "github.com/yungbote/learnpages/internal/http/middleware"
	"github.com/yungbote/learnpages/internal/observability"
	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/i18n"
	"github.com/yungbote/learnpages/internal/realtime"
	"github.com/yungbote/learnpages/internal/services"
)

type testEnv struct {
	engine   *gin.Engine
	db       *gorm.DB
	auth     services.AuthService
	registry *pages.Registry
	metrics  *observability.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics(true)
	tr, err := i18n.NewTranslator("en")
	require.NoError(t, err)

	orch, err := pages.NewOrchestrator(pages.Deps{
		Sources:    sources.New(db, log, 0),
		Errors:     pages.NewStateErrorReporter(log),
		Translator: tr,
		Log:        log,
		Observer:   metrics,
	})
	require.NoError(t, err)
	registry := pages.NewRegistry(nil)

	hub := realtime.NewSSEHub(log)
	publisher, err := realtime.NewStorePublisher(log, hub, nil)
	require.NoError(t, err)
	registry.OnNewStore(func(sessionID uuid.UUID, st *pages.Store) {
		publisher.Attach(sessionID, st)
	})

	pageService, err := services.NewPageService(log, orch, registry)
	require.NoError(t, err)
	auth, err := services.NewAuthService(log, "test-secret", time.Hour)
	require.NoError(t, err)

	engine := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		LearnHandler:    httpH.NewLearnHandler(pageService),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub, pageService, metrics),
		HealthHandler:   httpH.NewHealthHandler(db, nil),
	})
	return &testEnv{engine: engine, db: db, auth: auth, registry: registry, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) bearer(t *testing.T, learnerID, sessionID uuid.UUID) map[string]string {
	t.Helper()
	token, err := e.auth.IssueAccessToken(learnerID, sessionID)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

type stateBody struct {
	State pages.State `json:"state"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) pages.State {
	t.Helper()
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	var body stateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.State
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder, status int) errorBody {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "/healthcheck", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestHealthcheckReportsClosedDB(t *testing.T) {
	env := newTestEnv(t)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	body := decodeError(t, env.do(t, "/healthcheck", nil), nethttp.StatusServiceUnavailable)
	require.Equal(t, "unhealthy", body.Error.Code)
}

func TestListClassesAnonymous(t *testing.T) {
	env := newTestEnv(t)
	state := decodeState(t, env.do(t, "/api/learn/classes", nil))
	require.Equal(t, pages.PageAllClasses, state.PageName)
	require.Equal(t, "All classes", state.Title)
	require.False(t, state.Loading)
	require.Empty(t, state.PageState.Classrooms)
}

func TestListClassesForLearner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := uuid.New()
	testutil.SeedClassroom(t, ctx, env.db, "Biology", learner)
	testutil.SeedClassroom(t, ctx, env.db, "Other class")

	state := decodeState(t, env.do(t, "/api/learn/classes", env.bearer(t, learner, uuid.New())))
	require.Len(t, state.PageState.Classrooms, 1)
	require.Equal(t, "Biology", state.PageState.Classrooms[0].Name)
	require.Equal(t, learner, state.Session.LearnerID)
}

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	body := decodeError(t, env.do(t, "/api/learn/classes", map[string]string{"Authorization": "Bearer nope"}), nethttp.StatusUnauthorized)
	require.Equal(t, "unauthorized", body.Error.Code)
}

func TestMalformedSessionHeaderRejected(t *testing.T) {
	env := newTestEnv(t)
	body := decodeError(t, env.do(t, "/api/learn/classes", map[string]string{"X-Session-Id": "abc"}), nethttp.StatusBadRequest)
	require.Equal(t, "invalid_argument", body.Error.Code)
}

func TestInvalidPathParams(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{
		"/api/learn/classes/not-a-uuid",
		"/api/learn/lessons/not-a-uuid",
		"/api/learn/lessons/" + uuid.NewString() + "/resources/-1",
		"/api/learn/lessons/" + uuid.NewString() + "/resources/x",
	} {
		t.Run(path, func(t *testing.T) {
			body := decodeError(t, env.do(t, path, nil), nethttp.StatusBadRequest)
			require.Equal(t, "invalid_argument", body.Error.Code)
		})
	}
}

func TestUnknownClassIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	body := decodeError(t, env.do(t, "/api/learn/classes/"+uuid.NewString(), env.bearer(t, uuid.New(), uuid.New())), nethttp.StatusNotFound)
	require.Equal(t, "not_found", body.Error.Code)
	require.NotEmpty(t, body.Error.Message)
}

func TestClassAssignmentsOnlyForMembers(t *testing.T) {
	env := newTestEnv(t)
	member := uuid.New()
	class := testutil.SeedClassroom(t, context.Background(), env.db, "PrivateClass", member)
	path := "/api/learn/classes/" + class.ID.String()

	state := decodeState(t, env.do(t, path, env.bearer(t, member, uuid.New())))
	require.Equal(t, "PrivateClass", state.PageState.CurrentClassroom.Name)

	body := decodeError(t, env.do(t, path, env.bearer(t, uuid.New(), uuid.New())), nethttp.StatusNotFound)
	require.Equal(t, "not_found", body.Error.Code)
	require.NotContains(t, body.Error.Message, "PrivateClass")

	rec := env.do(t, path, nil)
	body = decodeError(t, rec, nethttp.StatusUnauthorized)
	require.Equal(t, "unauthorized", body.Error.Code)
	require.NotContains(t, rec.Body.String(), "PrivateClass")
}

func TestLessonPlaylistAwaitsProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := uuid.New()
	second := testutil.SeedContentNode(t, ctx, env.db, "Second")
	first := testutil.SeedContentNode(t, ctx, env.db, "First")
	lesson := testutil.SeedLesson(t, ctx, env.db, uuid.New(), first.ID, second.ID)
	require.NoError(t, env.db.Create(&types.ContentNodeProgress{
		LearnerID: learner, ContentNodeID: second.ID, Progress: 0.5, Kind: "video",
	}).Error)

	state := decodeState(t, env.do(t, "/api/learn/lessons/"+lesson.ID.String()+"?await_progress=true", env.bearer(t, learner, uuid.New())))
	require.Equal(t, pages.PageLessonPlaylist, state.PageName)
	require.Equal(t, "Lesson contents", state.Title)
	require.Len(t, state.PageState.ContentNodes, 2)
	require.Equal(t, first.ID, state.PageState.ContentNodes[0].ID)
	require.Equal(t, second.ID, state.PageState.ContentNodes[1].ID)
	require.Len(t, state.PageState.ContentNodesProgress, 1)
}

func TestResourceViewerMissingResource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	node := testutil.SeedContentNode(t, ctx, env.db, "Only")
	lesson := testutil.SeedLesson(t, ctx, env.db, uuid.New(), node.ID)

	state := decodeState(t, env.do(t, "/api/learn/lessons/"+lesson.ID.String()+"/resources/0", nil))
	require.Equal(t, node.ID, state.PageState.Content.ID)
	require.Nil(t, state.PageState.NextLessonResource)

	body := decodeError(t, env.do(t, "/api/learn/lessons/"+lesson.ID.String()+"/resources/3", nil), nethttp.StatusNotFound)
	require.Equal(t, "missing_resource", body.Error.Code)
}

func TestStateFollowsSession(t *testing.T) {
	env := newTestEnv(t)
	header := env.bearer(t, uuid.New(), uuid.New())

	decodeState(t, env.do(t, "/api/learn/classes", header))
	state := decodeState(t, env.do(t, "/api/learn/state", header))
	require.Equal(t, pages.PageAllClasses, state.PageName)
	require.Equal(t, 1, env.registry.Len())

	other := decodeState(t, env.do(t, "/api/learn/state", map[string]string{"X-Session-Id": uuid.NewString()}))
	require.Empty(t, other.PageName)
}

func TestSessionIsBoundToItsLearner(t *testing.T) {
	env := newTestEnv(t)
	victim, sessionID := uuid.New(), uuid.New()
	testutil.SeedClassroom(t, context.Background(), env.db, "VictimSecretClass", victim)
	state := decodeState(t, env.do(t, "/api/learn/classes", env.bearer(t, victim, sessionID)))
	require.Len(t, state.PageState.Classrooms, 1)

	header := map[string]string{"X-Session-Id": sessionID.String()}
	for name, path := range map[string]string{"state": "/api/learn/state", "stream": "/api/learn/stream"} {
		rec := env.do(t, path, header)
		body := decodeError(t, rec, nethttp.StatusForbidden)
		require.Equal(t, "forbidden", body.Error.Code, name)
		require.NotContains(t, rec.Body.String(), "VictimSecretClass", name)
	}

	// A token without a session claim falls back to the header, which is
	// still bound to the victim.
	bare := env.bearer(t, uuid.New(), uuid.Nil)
	bare["X-Session-Id"] = sessionID.String()
	rec := env.do(t, "/api/learn/state", bare)
	decodeError(t, rec, nethttp.StatusForbidden)
	require.NotContains(t, rec.Body.String(), "VictimSecretClass")

	// Another learner's token carries their own session; the header is ignored.
	other := env.bearer(t, uuid.New(), uuid.New())
	other["X-Session-Id"] = sessionID.String()
	mine := decodeState(t, env.do(t, "/api/learn/state", other))
	require.Empty(t, mine.PageState.Classrooms)
	require.NotEqual(t, sessionID, mine.Session.SessionID)

	st, ok := env.registry.Get(sessionID)
	require.True(t, ok)
	require.Equal(t, victim, st.Snapshot().Session.LearnerID)
	require.Equal(t, "VictimSecretClass", st.Snapshot().PageState.Classrooms[0].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	decodeState(t, env.do(t, "/api/learn/classes", nil))

	rec := env.do(t, "/metrics", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `lp_api_requests_total{method="GET",route="/api/learn/classes",status="200"} 1`)
	require.Contains(t, rec.Body.String(), "lp_page_pipelines_total")
}

func TestStreamRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	body := decodeError(t, env.do(t, "/api/learn/stream", nil), nethttp.StatusBadRequest)
	require.Equal(t, "invalid_argument", body.Error.Code)
}

func TestStreamSendsSnapshotThenActions(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	sessionID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, srv.URL+"/api/learn/stream", nil)
	require.NoError(t, err)
	req.Header.Set("X-Session-Id", sessionID)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 64)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if ev, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- ev
			}
		}
	}()

	require.Equal(t, string(realtime.SSEEventPageState), <-events)

	rec := env.do(t, "/api/learn/classes", map[string]string{"X-Session-Id": sessionID})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	// preparePage dispatches four actions before the pipeline fetches.
	for i := 0; i < 4; i++ {
		select {
		case ev := <-events:
			require.Equal(t, string(realtime.SSEEventPageAction), ev)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for action %d", i)
		}
	}
}
