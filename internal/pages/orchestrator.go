package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

const (
	titleNamespace = "classesPageTitles"

	defaultProgressTimeout = 30 * time.Second
)

type Deps struct {
	Sources    Sources
	Errors     ErrorReporter
	Translator Translator
	// Auth defaults to IsUserLoggedIn.
	Auth AuthFunc
	Log  *logger.Logger
	// ProgressTimeout bounds the background progress fetch, which outlives
	// the caller's context.
	ProgressTimeout time.Duration
	// Observer is optional.
	Observer Observer
}

// Observer receives pipeline and progress fetch timings.
type Observer interface {
	ObservePipeline(page, outcome string, dur time.Duration)
	ObserveProgressFetch(outcome string, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObservePipeline(string, string, time.Duration) {}
func (nopObserver) ObserveProgressFetch(string, time.Duration)    {}

type Orchestrator struct {
	src             Sources
	errs            ErrorReporter
	tr              Translator
	auth            AuthFunc
	log             *logger.Logger
	tracer          trace.Tracer
	obs             Observer
	progressTimeout time.Duration
}

func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Log == nil:
		return nil, errors.New("pages: logger required")
	case deps.Sources.Classrooms == nil, deps.Sources.Lessons == nil,
		deps.Sources.Content == nil, deps.Sources.Progress == nil:
		return nil, errors.New("pages: all sources required")
	case deps.Errors == nil:
		return nil, errors.New("pages: error reporter required")
	case deps.Translator == nil:
		return nil, errors.New("pages: translator required")
	}
	auth := deps.Auth
	if auth == nil {
		auth = IsUserLoggedIn
	}
	obs := deps.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	timeout := deps.ProgressTimeout
	if timeout <= 0 {
		timeout = defaultProgressTimeout
	}
	return &Orchestrator{
		src:             deps.Sources,
		errs:            deps.Errors,
		tr:              deps.Translator,
		auth:            auth,
		log:             deps.Log.With("component", "PageOrchestrator"),
		tracer:          otel.Tracer("github.com/yungbote/learnpages/internal/pages"),
		obs:             obs,
		progressTimeout: timeout,
	}, nil
}

// Show runs the pipeline for intent. The task is non-nil only for a playlist
// that issued a progress fetch.
func (o *Orchestrator) Show(ctx context.Context, st *Store, intent Intent) (*ProgressTask, error) {
	switch intent.Page {
	case PageAllClasses:
		return nil, o.ShowAllClasses(ctx, st)
	case PageClassAssignments:
		return nil, o.ShowClassAssignments(ctx, st, intent.ClassID)
	case PageLessonPlaylist:
		return o.ShowLessonPlaylist(ctx, st, intent.LessonID)
	case PageLessonResourceViewer:
		return nil, o.ShowLessonResourceViewer(ctx, st, intent.LessonID, intent.ResourceIndex)
	default:
		return nil, fmt.Errorf("pages: unknown page %q", intent.Page)
	}
}

// ShowAllClasses lists the learner's classrooms, without assignments.
func (o *Orchestrator) ShowAllClasses(ctx context.Context, st *Store) error {
	p, ctx := o.prepare(ctx, st, AllClasses(), o.tr.T(ctx, titleNamespace, "allClasses"), PageState{
		Classrooms: []*types.Classroom{},
	})
	defer p.end()

	classrooms, err := o.src.Classrooms.ListForLearner(ctx, types.ListClassroomsOptions{IncludeAssignments: false})
	if err != nil {
		return p.fail(ctx, err)
	}
	p.dispatch(SetLearnerClassrooms(classrooms))
	p.dispatch(SetPageLoading(false))
	return nil
}

// ShowClassAssignments loads one classroom with its assignments. The fetch
// is forced so an assignment-less copy cached by a listing is never used.
func (o *Orchestrator) ShowClassAssignments(ctx context.Context, st *Store, classID uuid.UUID) error {
	p, ctx := o.prepare(ctx, st, ClassAssignments(classID), o.tr.T(ctx, titleNamespace, "classAssignments"), PageState{
		CurrentClassroom: &types.Classroom{},
	})
	defer p.end()

	classroom, err := o.src.Classrooms.GetByID(ctx, classID, true)
	if err == nil && classroom == nil {
		err = emptyResponse("classroom", classID)
	}
	if err != nil {
		return p.fail(ctx, err)
	}
	p.dispatch(SetCurrentClassroom(classroom))
	p.dispatch(SetPageLoading(false))
	return nil
}

// ShowLessonPlaylist loads a lesson and its content nodes in lesson order.
// For signed-in learners with a non-empty playlist it also starts a progress
// fetch that settles independently of the pipeline; the returned task tracks
// it.
func (o *Orchestrator) ShowLessonPlaylist(ctx context.Context, st *Store, lessonID uuid.UUID) (*ProgressTask, error) {
	p, ctx := o.prepare(ctx, st, LessonPlaylist(lessonID), o.tr.T(ctx, titleNamespace, "lessonContents"), PageState{
		CurrentLesson: &types.Lesson{},
		ContentNodes:  []*types.ContentNode{},
	})
	defer p.end()

	lesson, err := o.src.Lessons.GetByID(ctx, lessonID, true)
	if err == nil && lesson == nil {
		err = emptyResponse("lesson", lessonID)
	}
	if err != nil {
		return nil, p.fail(ctx, err)
	}
	p.dispatch(SetCurrentLesson(lesson))

	nodes, err := o.src.Content.GetSlimBatch(ctx, lesson.ContentNodeIDs())
	if err != nil {
		return nil, p.fail(ctx, err)
	}
	sorted := orderByLessonResources(lesson, nodes)
	p.dispatch(SetLessonContentNodes(sorted))

	var task *ProgressTask
	if o.auth(st.Snapshot()) && len(sorted) > 0 {
		task = o.startProgressFetch(ctx, p, nodeIDs(sorted))
	}
	p.dispatch(SetPageLoading(false))
	return task, nil
}

// ShowLessonResourceViewer loads the full node at resourceIndex of a lesson
// and the slim node that follows it, if any.
func (o *Orchestrator) ShowLessonResourceViewer(ctx context.Context, st *Store, lessonID uuid.UUID, resourceIndex int) error {
	p, ctx := o.prepare(ctx, st, LessonResourceViewer(lessonID, resourceIndex), "", PageState{
		CurrentLesson: &types.Lesson{},
		Content:       &types.ContentNode{},
	})
	defer p.end()

	lesson, err := o.src.Lessons.GetByID(ctx, lessonID, true)
	if err == nil && lesson == nil {
		err = emptyResponse("lesson", lessonID)
	}
	if err != nil {
		return p.fail(ctx, err)
	}
	p.dispatch(SetCurrentLesson(lesson))

	current := lesson.ResourceAt(resourceIndex)
	if current == nil {
		return p.fail(ctx, &DataIntegrityError{LessonID: lessonID, Index: resourceIndex})
	}
	next := lesson.ResourceAt(resourceIndex + 1)

	var pair ResourcePair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		node, err := o.src.Content.GetFull(gctx, current.ContentNodeID)
		if err != nil {
			return err
		}
		pair.Current = node
		return nil
	})
	if next != nil {
		g.Go(func() error {
			node, err := o.src.Content.GetSlim(gctx, next.ContentNodeID)
			if err != nil {
				return err
			}
			pair.Next = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p.fail(ctx, err)
	}
	if pair.Current == nil {
		return p.fail(ctx, emptyResponse("content node", current.ContentNodeID))
	}

	p.dispatch(SetTitle(pair.Current.Title))
	p.dispatch(SetCurrentAndNextResources(pair))
	p.dispatch(SetPageLoading(false))
	return nil
}

func (o *Orchestrator) startProgressFetch(ctx context.Context, p *pipeline, ids []uuid.UUID) *ProgressTask {
	task := newProgressTask()
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.progressTimeout)
	go func() {
		defer cancel()
		start := time.Now()
		rows, err := o.src.Progress.GetBatch(bg, ids)
		if err != nil {
			o.obs.ObserveProgressFetch("error", time.Since(start))
			o.log.Warn("lesson progress fetch failed",
				append([]interface{}{"intent", p.intent.String(), "error", err}, ctxutil.LogFields(ctx)...)...)
			task.finish(nil, err)
			return
		}
		o.obs.ObserveProgressFetch("ok", time.Since(start))
		p.dispatch(SetLessonContentNodesProgress(rows))
		task.finish(rows, nil)
	}()
	return task
}

// pipeline is one run of a Show* operation against a store.
type pipeline struct {
	o      *Orchestrator
	st     *Store
	gen    uint64
	intent Intent
	span   trace.Span
	start  time.Time
	failed bool
}

func (o *Orchestrator) prepare(ctx context.Context, st *Store, intent Intent, title string, initial PageState) (*pipeline, context.Context) {
	ctx, span := o.tracer.Start(ctx, "pages."+string(intent.Page), trace.WithAttributes(
		attribute.String("page.intent", intent.String()),
	))
	p := &pipeline{o: o, st: st, gen: st.Begin(), intent: intent, span: span, start: time.Now()}
	p.dispatch(SetPageName(intent.Page))
	p.dispatch(SetTitle(title))
	p.dispatch(SetPageState(initial))
	p.dispatch(SetPageLoading(true))
	return p, ctx
}

func (p *pipeline) dispatch(a Action) {
	if !p.st.Dispatch(p.gen, a) {
		p.o.log.Debug("dropping dispatch from superseded pipeline", "intent", p.intent.String(), "action", a.Type)
	}
}

func (p *pipeline) fail(ctx context.Context, err error) error {
	p.failed = true
	p.span.RecordError(err)
	p.span.SetStatus(codes.Error, err.Error())
	p.o.errs.ReportError(ctx, ErrorContext{Intent: p.intent, Store: p.st, Generation: p.gen}, err)
	return err
}

func (p *pipeline) end() {
	dur := time.Since(p.start)
	outcome := "ok"
	switch {
	case p.failed:
		outcome = "error"
	case p.st.Generation() != p.gen:
		outcome = "superseded"
	}
	p.o.obs.ObservePipeline(string(p.intent.Page), outcome, dur)
	p.o.log.Debug("page pipeline settled",
		"intent", p.intent.String(),
		"outcome", outcome,
		"duration_ms", dur.Milliseconds(),
	)
	p.span.End()
}
