package learn

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lesson struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassroomID uuid.UUID `gorm:"type:uuid;index" json:"classroom_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Active      bool      `gorm:"column:active;not null" json:"active"`

	// Ordered by Position.
	Resources []LessonResource `gorm:"foreignKey:LessonID;references:ID" json:"resources"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	for i := range l.Resources {
		l.Resources[i].Position = i
	}
	return nil
}

// ContentNodeIDs returns the referenced node ids in resource order,
// duplicates included.
func (l *Lesson) ContentNodeIDs() []uuid.UUID {
	if l == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(l.Resources))
	for _, r := range l.Resources {
		ids = append(ids, r.ContentNodeID)
	}
	return ids
}

// ResourceAt returns the resource at index, or nil when out of range.
func (l *Lesson) ResourceAt(index int) *LessonResource {
	if l == nil || index < 0 || index >= len(l.Resources) {
		return nil
	}
	return &l.Resources[index]
}

type LessonResource struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	LessonID      uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_resource_pos,priority:1" json:"-"`
	ContentNodeID uuid.UUID `gorm:"type:uuid;not null" json:"contentnode_id"`
	Position      int       `gorm:"column:position;not null;index:idx_lesson_resource_pos,priority:2" json:"position"`
}

func (LessonResource) TableName() string { return "lesson_resource" }

func (r *LessonResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
