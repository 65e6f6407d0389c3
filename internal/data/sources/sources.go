// Package sources backs the page orchestrator's data interfaces with the
// gorm repositories. The calling learner is read from the request context.
package sources

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/data/repos"
	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/apierr"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

// DefaultBatchSize caps the ids sent in one GetSlimBatch query.
const DefaultBatchSize = 200

type classroomSource struct {
	log  *logger.Logger
	repo repos.ClassroomRepo
}

func NewClassroomSource(log *logger.Logger, repo repos.ClassroomRepo) pages.ClassroomSource {
	return &classroomSource{log: log.With("source", "ClassroomSource"), repo: repo}
}

// ListForLearner returns an empty list for anonymous callers.
func (s *classroomSource) ListForLearner(ctx context.Context, opts types.ListClassroomsOptions) ([]*types.Classroom, error) {
	learnerID := ctxutil.LearnerID(ctx)
	if learnerID == uuid.Nil {
		return []*types.Classroom{}, nil
	}
	rows, err := s.repo.ListForLearner(ctx, nil, learnerID, opts.IncludeAssignments)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rows, nil
}

// GetByID reads a classroom of the calling learner. It always reads the
// database, so forceFresh has nothing to bypass. Anonymous callers are
// unauthorized; classrooms the learner is not a member of are not found.
func (s *classroomSource) GetByID(ctx context.Context, id uuid.UUID, forceFresh bool) (*types.Classroom, error) {
	learnerID := ctxutil.LearnerID(ctx)
	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("get classroom %s: %w", id, apierr.ErrUnauthorized)
	}
	row, err := s.repo.GetForLearner(ctx, nil, id, learnerID, true)
	if err != nil {
		return nil, fmt.Errorf("get classroom %s: %w", id, err)
	}
	return row, nil
}

type lessonSource struct {
	log  *logger.Logger
	repo repos.LessonRepo
}

func NewLessonSource(log *logger.Logger, repo repos.LessonRepo) pages.LessonSource {
	return &lessonSource{log: log.With("source", "LessonSource"), repo: repo}
}

func (s *lessonSource) GetByID(ctx context.Context, id uuid.UUID, forceFresh bool) (*types.Lesson, error) {
	row, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("get lesson %s: %w", id, err)
	}
	return row, nil
}

type contentSource struct {
	log       *logger.Logger
	repo      repos.ContentNodeRepo
	batchSize int
}

func NewContentSource(log *logger.Logger, repo repos.ContentNodeRepo, batchSize int) pages.ContentSource {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &contentSource{log: log.With("source", "ContentSource"), repo: repo, batchSize: batchSize}
}

// GetSlimBatch splits ids into chunks queried concurrently. Results come back
// in chunk order, each chunk in the repository's order.
func (s *contentSource) GetSlimBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNode, error) {
	if len(ids) == 0 {
		return []*types.ContentNode{}, nil
	}
	chunks := chunkIDs(ids, s.batchSize)
	results := make([][]*types.ContentNode, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			rows, err := s.repo.GetSlimByIDs(gctx, nil, chunk)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get content nodes: %w", err)
	}

	out := make([]*types.ContentNode, 0, len(ids))
	for _, rows := range results {
		out = append(out, rows...)
	}
	if len(chunks) > 1 {
		s.log.Debug("content batch fetched", "ids", len(ids), "chunks", len(chunks), "rows", len(out))
	}
	return out, nil
}

func (s *contentSource) GetFull(ctx context.Context, id uuid.UUID) (*types.ContentNode, error) {
	row, err := s.repo.GetFullByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("get content node %s: %w", id, err)
	}
	return row, nil
}

func (s *contentSource) GetSlim(ctx context.Context, id uuid.UUID) (*types.ContentNode, error) {
	row, err := s.repo.GetSlimByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("get content node %s: %w", id, err)
	}
	return row, nil
}

type progressSource struct {
	log  *logger.Logger
	repo repos.ProgressRepo
}

func NewProgressSource(log *logger.Logger, repo repos.ProgressRepo) pages.ProgressSource {
	return &progressSource{log: log.With("source", "ProgressSource"), repo: repo}
}

func (s *progressSource) GetBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNodeProgress, error) {
	learnerID := ctxutil.LearnerID(ctx)
	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("get progress: %w", apierr.ErrUnauthorized)
	}
	rows, err := s.repo.GetByLearnerAndContentNodeIDs(ctx, nil, learnerID, ids)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return rows, nil
}

// New wires all four sources against db.
func New(db *gorm.DB, log *logger.Logger, batchSize int) pages.Sources {
	return pages.Sources{
		Classrooms: NewClassroomSource(log, repos.NewClassroomRepo(db, log)),
		Lessons:    NewLessonSource(log, repos.NewLessonRepo(db, log)),
		Content:    NewContentSource(log, repos.NewContentNodeRepo(db, log), batchSize),
		Progress:   NewProgressSource(log, repos.NewProgressRepo(db, log)),
	}
}

func chunkIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	var out [][]uuid.UUID
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}
