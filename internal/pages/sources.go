package pages

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/learnpages/internal/domain/learn"
)

type ClassroomSource interface {
	ListForLearner(ctx context.Context, opts types.ListClassroomsOptions) ([]*types.Classroom, error)
	// GetByID with forceFresh must bypass any cached copy.
	GetByID(ctx context.Context, id uuid.UUID, forceFresh bool) (*types.Classroom, error)
}

type LessonSource interface {
	GetByID(ctx context.Context, id uuid.UUID, forceFresh bool) (*types.Lesson, error)
}

type ContentSource interface {
	// GetSlimBatch returns nodes in whatever order the backend picks.
	GetSlimBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNode, error)
	GetFull(ctx context.Context, id uuid.UUID) (*types.ContentNode, error)
	GetSlim(ctx context.Context, id uuid.UUID) (*types.ContentNode, error)
}

type ProgressSource interface {
	GetBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNodeProgress, error)
}

type Translator interface {
	T(ctx context.Context, namespace, key string) string
}

// AuthFunc reports whether the state belongs to a signed-in learner.
type AuthFunc func(State) bool

// IsUserLoggedIn is the default AuthFunc.
func IsUserLoggedIn(s State) bool {
	return s.Session.LearnerID != uuid.Nil
}

type Sources struct {
	Classrooms ClassroomSource
	Lessons    LessonSource
	Content    ContentSource
	Progress   ProgressSource
}
