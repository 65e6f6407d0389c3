package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/learnpages/internal/domain/learn"
)

func SeedClassroom(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, learners ...uuid.UUID) *types.Classroom {
	tb.Helper()
	c := &types.Classroom{
		ID:       uuid.New(),
		Name:     name,
		Metadata: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed classroom: %v", err)
	}
	for _, learnerID := range learners {
		m := &types.ClassroomMembership{ClassroomID: c.ID, LearnerID: learnerID}
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			tb.Fatalf("seed membership: %v", err)
		}
	}
	return c
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, classroomID uuid.UUID, kind types.AssignmentKind, targetID uuid.UUID, position int) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:          uuid.New(),
		ClassroomID: classroomID,
		Kind:        kind,
		TargetID:    targetID,
		Title:       string(kind),
		Active:      true,
		Position:    position,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

func SeedContentNode(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.ContentNode {
	tb.Helper()
	n := &types.ContentNode{
		ID:          uuid.New(),
		Title:       title,
		Kind:        "video",
		Description: title + " description",
		Author:      "author",
		License:     "CC BY",
		Files:       datatypes.JSON([]byte(`[{"preset":"high_res_video"}]`)),
		Options:     datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed content node: %v", err)
	}
	return n
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, classroomID uuid.UUID, nodeIDs ...uuid.UUID) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:          uuid.New(),
		ClassroomID: classroomID,
		Title:       "lesson",
		Active:      true,
	}
	for _, id := range nodeIDs {
		l.Resources = append(l.Resources, types.LessonResource{ContentNodeID: id})
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
