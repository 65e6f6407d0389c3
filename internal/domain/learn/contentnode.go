package learn

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentNode is a single learning resource. Rows loaded through the slim
// projection only carry SlimColumns; the rest stay zero.
type ContentNode struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Kind        string     `gorm:"column:kind;not null" json:"kind"`
	Description string     `gorm:"column:description" json:"description"`
	Thumbnail   string     `gorm:"column:thumbnail" json:"thumbnail,omitempty"`

	Author  string         `gorm:"column:author" json:"author,omitempty"`
	License string         `gorm:"column:license" json:"license,omitempty"`
	Lang    string         `gorm:"column:lang" json:"lang,omitempty"`
	Files   datatypes.JSON `gorm:"column:files" json:"files,omitempty"`
	Options datatypes.JSON `gorm:"column:options" json:"options,omitempty"`

	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ContentNode) TableName() string { return "content_node" }

// SlimColumns is the listing projection.
var SlimColumns = []string{"id", "parent_id", "title", "kind", "description", "thumbnail"}

func (n *ContentNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ContentNodeProgress records how far a learner got through a node, in [0,1].
type ContentNodeProgress struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	LearnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_learner_node,priority:1" json:"-"`
	ContentNodeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_learner_node,priority:2" json:"id"`
	Progress      float64   `gorm:"column:progress;not null;default:0" json:"progress_fraction"`
	Kind          string    `gorm:"column:kind" json:"kind,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ContentNodeProgress) TableName() string { return "content_node_progress" }

func (p *ContentNodeProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Models lists every table for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&Classroom{},
		&ClassroomMembership{},
		&Assignment{},
		&Lesson{},
		&LessonResource{},
		&ContentNode{},
		&ContentNodeProgress{},
	}
}
