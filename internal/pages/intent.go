package pages

import (
	"fmt"

	"github.com/google/uuid"
)

type PageName string

const (
	PageAllClasses           PageName = "ALL_CLASSES"
	PageClassAssignments     PageName = "CLASS_ASSIGNMENTS"
	PageLessonPlaylist       PageName = "LESSON_PLAYLIST"
	PageLessonResourceViewer PageName = "LESSON_RESOURCE_VIEWER"
)

// Intent is a navigation target. Only the fields relevant to Page are set.
type Intent struct {
	Page          PageName  `json:"page"`
	ClassID       uuid.UUID `json:"class_id,omitempty"`
	LessonID      uuid.UUID `json:"lesson_id,omitempty"`
	ResourceIndex int       `json:"resource_index,omitempty"`
}

func AllClasses() Intent { return Intent{Page: PageAllClasses} }

func ClassAssignments(classID uuid.UUID) Intent {
	return Intent{Page: PageClassAssignments, ClassID: classID}
}

func LessonPlaylist(lessonID uuid.UUID) Intent {
	return Intent{Page: PageLessonPlaylist, LessonID: lessonID}
}

func LessonResourceViewer(lessonID uuid.UUID, resourceIndex int) Intent {
	return Intent{Page: PageLessonResourceViewer, LessonID: lessonID, ResourceIndex: resourceIndex}
}

func (i Intent) String() string {
	switch i.Page {
	case PageClassAssignments:
		return fmt.Sprintf("%s(%s)", i.Page, i.ClassID)
	case PageLessonPlaylist:
		return fmt.Sprintf("%s(%s)", i.Page, i.LessonID)
	case PageLessonResourceViewer:
		return fmt.Sprintf("%s(%s, %d)", i.Page, i.LessonID, i.ResourceIndex)
	default:
		return string(i.Page)
	}
}
