package learn

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssignmentKind string

const (
	AssignmentKindLesson AssignmentKind = "lesson"
	AssignmentKindExam   AssignmentKind = "exam"
)

type Classroom struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string         `gorm:"column:name;not null" json:"name"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	// Nil when loaded through the "no assignments" listing.
	Assignments []*Assignment `gorm:"foreignKey:ClassroomID;references:ID" json:"assignments"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Classroom) TableName() string { return "classroom" }

func (c *Classroom) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ClassroomMembership enrolls a learner in a classroom.
type ClassroomMembership struct {
	ClassroomID uuid.UUID `gorm:"type:uuid;primaryKey" json:"classroom_id"`
	LearnerID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"learner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ClassroomMembership) TableName() string { return "classroom_membership" }

// Assignment is a lesson or exam assigned to a classroom.
type Assignment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClassroomID uuid.UUID      `gorm:"type:uuid;not null;index" json:"classroom_id"`
	Kind        AssignmentKind `gorm:"column:kind;not null" json:"kind"`
	TargetID    uuid.UUID      `gorm:"type:uuid;not null" json:"target_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Active      bool           `gorm:"column:active;not null" json:"active"`
	Position    int            `gorm:"column:position;not null;default:0" json:"position"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ListClassroomsOptions shapes a learner classroom listing.
type ListClassroomsOptions struct {
	IncludeAssignments bool
}
