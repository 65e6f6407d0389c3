package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/data/repos"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type Repos struct {
	Classroom   repos.ClassroomRepo
	Lesson      repos.LessonRepo
	ContentNode repos.ContentNodeRepo
	Progress    repos.ProgressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Classroom:   repos.NewClassroomRepo(db, log),
		Lesson:      repos.NewLessonRepo(db, log),
		ContentNode: repos.NewContentNodeRepo(db, log),
		Progress:    repos.NewProgressRepo(db, log),
	}
}
