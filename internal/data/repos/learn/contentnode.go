package learn

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type ContentNodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, nodes []*types.ContentNode) ([]*types.ContentNode, error)
	GetSlimByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentNode, error)
	GetSlimByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentNode, error)
	GetFullByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentNode, error)
}

type contentNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentNodeRepo(db *gorm.DB, baseLog *logger.Logger) ContentNodeRepo {
	repoLog := baseLog.With("repo", "ContentNodeRepo")
	return &contentNodeRepo{db: db, log: repoLog}
}

func (r *contentNodeRepo) Create(ctx context.Context, tx *gorm.DB, nodes []*types.ContentNode) ([]*types.ContentNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(nodes) == 0 {
		return []*types.ContentNode{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetSlimByIDs returns the slim projection ordered by title; callers must not
// rely on the order matching ids.
func (r *contentNodeRepo) GetSlimByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ContentNode{}
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Select(types.SlimColumns).
		Where("id IN ?", ids).
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentNodeRepo) GetSlimByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ContentNode
	if err := transaction.WithContext(ctx).
		Select(types.SlimColumns).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *contentNodeRepo) GetFullByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ContentNode
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
