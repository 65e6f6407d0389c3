package learn

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type ProgressRepo interface {
	GetByLearnerAndContentNodeIDs(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, nodeIDs []uuid.UUID) ([]*types.ContentNodeProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ContentNodeProgress) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) GetByLearnerAndContentNodeIDs(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, nodeIDs []uuid.UUID) ([]*types.ContentNodeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ContentNodeProgress{}
	if learnerID == uuid.Nil || len(nodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("learner_id = ? AND content_node_id IN ?", learnerID, nodeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert writes progress keyed by (learner_id, content_node_id).
func (r *progressRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ContentNodeProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.Progress < 0 {
			row.Progress = 0
		}
		if row.Progress > 1 {
			row.Progress = 1
		}
		row.UpdatedAt = now
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "content_node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"progress", "kind", "updated_at"}),
		}).
		Create(&rows).Error
}
