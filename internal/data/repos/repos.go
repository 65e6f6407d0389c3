package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/data/repos/learn"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type ClassroomRepo = learn.ClassroomRepo
type LessonRepo = learn.LessonRepo
type ContentNodeRepo = learn.ContentNodeRepo
type ProgressRepo = learn.ProgressRepo

func NewClassroomRepo(db *gorm.DB, baseLog *logger.Logger) ClassroomRepo {
	return learn.NewClassroomRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learn.NewLessonRepo(db, baseLog)
}
func NewContentNodeRepo(db *gorm.DB, baseLog *logger.Logger) ContentNodeRepo {
	return learn.NewContentNodeRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return learn.NewProgressRepo(db, baseLog)
}
