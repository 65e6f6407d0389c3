package learn

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type ClassroomRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Classroom) ([]*types.Classroom, error)
	AddMembers(ctx context.Context, tx *gorm.DB, classroomID uuid.UUID, learnerIDs []uuid.UUID) error
	ListForLearner(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, withAssignments bool) ([]*types.Classroom, error)
	GetForLearner(ctx context.Context, tx *gorm.DB, id, learnerID uuid.UUID, withAssignments bool) (*types.Classroom, error)
}

type classroomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassroomRepo(db *gorm.DB, baseLog *logger.Logger) ClassroomRepo {
	repoLog := baseLog.With("repo", "ClassroomRepo")
	return &classroomRepo{db: db, log: repoLog}
}

func (r *classroomRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Classroom) ([]*types.Classroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Classroom{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *classroomRepo) AddMembers(ctx context.Context, tx *gorm.DB, classroomID uuid.UUID, learnerIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if classroomID == uuid.Nil || len(learnerIDs) == 0 {
		return nil
	}

	rows := make([]*types.ClassroomMembership, 0, len(learnerIDs))
	for _, id := range learnerIDs {
		rows = append(rows, &types.ClassroomMembership{ClassroomID: classroomID, LearnerID: id})
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *classroomRepo) ListForLearner(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, withAssignments bool) ([]*types.Classroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.Classroom{}
	if learnerID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Joins("JOIN classroom_membership ON classroom_membership.classroom_id = classroom.id").
		Where("classroom_membership.learner_id = ?", learnerID).
		Order("classroom.name ASC")
	if withAssignments {
		q = preloadAssignments(q)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetForLearner reads a classroom the learner is a member of. Classrooms
// that do not exist and classrooms the learner does not belong to both yield
// gorm.ErrRecordNotFound.
func (r *classroomRepo) GetForLearner(ctx context.Context, tx *gorm.DB, id, learnerID uuid.UUID, withAssignments bool) (*types.Classroom, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if learnerID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	q := transaction.WithContext(ctx).
		Joins("JOIN classroom_membership ON classroom_membership.classroom_id = classroom.id").
		Where("classroom.id = ? AND classroom_membership.learner_id = ?", id, learnerID)
	if withAssignments {
		q = preloadAssignments(q)
	}
	var row types.Classroom
	if err := q.First(&row).Error; err != nil {
		return nil, err
	}
	if withAssignments && row.Assignments == nil {
		row.Assignments = []*types.Assignment{}
	}
	return &row, nil
}

func preloadAssignments(q *gorm.DB) *gorm.DB {
	return q.Preload("Assignments", func(db *gorm.DB) *gorm.DB {
		return db.Where("active = ?", true).Order("position ASC")
	})
}
