package services

import (
	"context"
	"fmt"

	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type ShowOptions struct {
	// AwaitProgress holds the response until the playlist's progress fetch
	// settles. Its failure is logged, not returned.
	AwaitProgress bool
}

// PageService runs page pipelines against the caller's session store.
type PageService interface {
	Show(ctx context.Context, intent pages.Intent, opts ShowOptions) (pages.State, error)
	Snapshot(ctx context.Context) (pages.State, error)
	Store(ctx context.Context) (*pages.Store, error)
}

type pageService struct {
	log      *logger.Logger
	orch     *pages.Orchestrator
	registry *pages.Registry
}

func NewPageService(log *logger.Logger, orch *pages.Orchestrator, registry *pages.Registry) (PageService, error) {
	if orch == nil || registry == nil {
		return nil, fmt.Errorf("orchestrator and registry required")
	}
	return &pageService{
		log:      log.With("service", "PageService"),
		orch:     orch,
		registry: registry,
	}, nil
}

func sessionFromContext(ctx context.Context) pages.Session {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return pages.Session{}
	}
	return pages.Session{LearnerID: rd.LearnerID, SessionID: rd.SessionID, Locale: rd.Locale}
}

// Store returns the caller's session store. A session id presented by a
// learner it was not created for is rejected with pages.ErrSessionOwner.
func (ps *pageService) Store(ctx context.Context) (*pages.Store, error) {
	st, err := ps.registry.For(sessionFromContext(ctx))
	if err != nil {
		ps.log.Warn("rejecting session", append([]interface{}{"error", err}, ctxutil.LogFields(ctx)...)...)
		return nil, err
	}
	return st, nil
}

func (ps *pageService) Snapshot(ctx context.Context) (pages.State, error) {
	st, err := ps.Store(ctx)
	if err != nil {
		return pages.State{}, err
	}
	return st.Snapshot(), nil
}

// Show returns the store snapshot taken once the pipeline settles, together
// with the pipeline's terminal error if it failed.
func (ps *pageService) Show(ctx context.Context, intent pages.Intent, opts ShowOptions) (pages.State, error) {
	st, err := ps.Store(ctx)
	if err != nil {
		return pages.State{}, err
	}
	task, err := ps.orch.Show(ctx, st, intent)
	if err == nil && opts.AwaitProgress && task != nil {
		if werr := task.Wait(ctx); werr != nil {
			ps.log.Warn("awaited progress fetch failed",
				append([]interface{}{"intent", intent.String(), "error", werr}, ctxutil.LogFields(ctx)...)...)
		}
	}
	return st.Snapshot(), err
}
