package pages

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/platform/clock"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

func id(n byte) uuid.UUID { return uuid.UUID{15: n} }

func lessonWith(lessonID uuid.UUID, nodes ...uuid.UUID) *types.Lesson {
	l := &types.Lesson{ID: lessonID, Title: "Fractions"}
	for i, n := range nodes {
		l.Resources = append(l.Resources, types.LessonResource{ContentNodeID: n, Position: i})
	}
	return l
}

func node(n uuid.UUID, title string) *types.ContentNode {
	return &types.ContentNode{ID: n, Title: title, Kind: "video"}
}

type fakeClassrooms struct {
	mu          sync.Mutex
	list        []*types.Classroom
	byID        map[uuid.UUID]*types.Classroom
	err         error
	listOpts    []types.ListClassroomsOptions
	forceFreshs []bool
}

func (f *fakeClassrooms) ListForLearner(ctx context.Context, opts types.ListClassroomsOptions) ([]*types.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOpts = append(f.listOpts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeClassrooms) GetByID(ctx context.Context, cid uuid.UUID, forceFresh bool) (*types.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceFreshs = append(f.forceFreshs, forceFresh)
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byID[cid]
	if !ok {
		return nil, errors.New("classroom not found")
	}
	return c, nil
}

type fakeLessons struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*types.Lesson
	err     error
	gate    chan struct{}
	entered chan struct{}
	forced  []bool
}

func (f *fakeLessons) GetByID(ctx context.Context, lid uuid.UUID, forceFresh bool) (*types.Lesson, error) {
	f.mu.Lock()
	f.forced = append(f.forced, forceFresh)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	l, ok := f.byID[lid]
	if !ok {
		return nil, errors.New("lesson not found")
	}
	return l, nil
}

type fakeContent struct {
	mu         sync.Mutex
	nodes      map[uuid.UUID]*types.ContentNode
	batchOrder []uuid.UUID
	batchErr   error
	fullErr    error
	batchCalls [][]uuid.UUID
	fullCalls  []uuid.UUID
	slimCalls  []uuid.UUID
}

func (f *fakeContent) GetSlimBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls = append(f.batchCalls, ids)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	want := map[uuid.UUID]bool{}
	for _, i := range ids {
		want[i] = true
	}
	out := []*types.ContentNode{}
	for _, i := range f.batchOrder {
		if want[i] {
			out = append(out, f.nodes[i])
		}
	}
	return out, nil
}

func (f *fakeContent) GetFull(ctx context.Context, nid uuid.UUID) (*types.ContentNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullCalls = append(f.fullCalls, nid)
	if f.fullErr != nil {
		return nil, f.fullErr
	}
	return f.nodes[nid], nil
}

func (f *fakeContent) GetSlim(ctx context.Context, nid uuid.UUID) (*types.ContentNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slimCalls = append(f.slimCalls, nid)
	return f.nodes[nid], nil
}

func (f *fakeContent) contentCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batchCalls) + len(f.fullCalls) + len(f.slimCalls)
}

type fakeProgress struct {
	mu    sync.Mutex
	rows  []*types.ContentNodeProgress
	err   error
	calls [][]uuid.UUID
}

func (f *fakeProgress) GetBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNodeProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeProgress) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingReporter wraps StateErrorReporter and counts calls.
type recordingReporter struct {
	inner *StateErrorReporter
	mu    sync.Mutex
	errs  []error
}

func (r *recordingReporter) ReportError(ctx context.Context, ec ErrorContext, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.inner.ReportError(ctx, ec, err)
}

func (r *recordingReporter) calls() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

type echoTranslator struct{}

func (echoTranslator) T(ctx context.Context, namespace, key string) string {
	return namespace + "." + key
}

type harness struct {
	orch       *Orchestrator
	store      *Store
	classrooms *fakeClassrooms
	lessons    *fakeLessons
	content    *fakeContent
	progress   *fakeProgress
	reporter   *recordingReporter

	mu      sync.Mutex
	actions []Action
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.Nop()
	h := &harness{
		classrooms: &fakeClassrooms{byID: map[uuid.UUID]*types.Classroom{}},
		lessons:    &fakeLessons{byID: map[uuid.UUID]*types.Lesson{}},
		content:    &fakeContent{nodes: map[uuid.UUID]*types.ContentNode{}},
		progress:   &fakeProgress{},
		reporter:   &recordingReporter{inner: NewStateErrorReporter(log)},
		store:      NewStore(clock.System{}),
	}
	orch, err := NewOrchestrator(Deps{
		Sources: Sources{
			Classrooms: h.classrooms,
			Lessons:    h.lessons,
			Content:    h.content,
			Progress:   h.progress,
		},
		Errors:     h.reporter,
		Translator: echoTranslator{},
		Log:        log,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	h.orch = orch
	unsubscribe := h.store.Subscribe(func(a Action, _ State) {
		h.mu.Lock()
		h.actions = append(h.actions, a)
		h.mu.Unlock()
	})
	t.Cleanup(unsubscribe)
	return h
}

func (h *harness) signIn() {
	h.store.Dispatch(Unscoped, SetSession(Session{LearnerID: uuid.New(), SessionID: uuid.New()}))
}

func (h *harness) actionTypes() []ActionType {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ActionType, 0, len(h.actions))
	for _, a := range h.actions {
		out = append(out, a.Type)
	}
	return out
}

func (h *harness) countActions(t ActionType) int {
	n := 0
	for _, got := range h.actionTypes() {
		if got == t {
			n++
		}
	}
	return n
}
