package learn

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/data/repos/testutil"
	types "github.com/yungbote/learnpages/internal/domain/learn"
)

func TestClassroomRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewClassroomRepo(db, testutil.Logger(t))

	learner := uuid.New()
	algebra := testutil.SeedClassroom(t, ctx, tx, "Algebra", learner)
	biology := testutil.SeedClassroom(t, ctx, tx, "Biology", learner)
	chemistry := testutil.SeedClassroom(t, ctx, tx, "Chemistry")
	second := testutil.SeedAssignment(t, ctx, tx, algebra.ID, types.AssignmentKindExam, uuid.New(), 1)
	first := testutil.SeedAssignment(t, ctx, tx, algebra.ID, types.AssignmentKindLesson, uuid.New(), 0)

	rows, err := repo.ListForLearner(ctx, tx, learner, false)
	if err != nil {
		t.Fatalf("ListForLearner: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != algebra.ID || rows[1].ID != biology.ID {
		t.Fatalf("ListForLearner: want [Algebra Biology] got=%+v", rows)
	}
	if rows[0].Assignments != nil {
		t.Fatalf("ListForLearner without assignments should leave Assignments nil")
	}

	rows, err = repo.ListForLearner(ctx, tx, learner, true)
	if err != nil || len(rows[0].Assignments) != 2 {
		t.Fatalf("ListForLearner with assignments: err=%v rows=%+v", err, rows)
	}

	got, err := repo.GetForLearner(ctx, tx, algebra.ID, learner, true)
	if err != nil {
		t.Fatalf("GetForLearner: %v", err)
	}
	if len(got.Assignments) != 2 || got.Assignments[0].ID != first.ID || got.Assignments[1].ID != second.ID {
		t.Fatalf("GetForLearner assignments order: %+v", got.Assignments)
	}
	empty, err := repo.GetForLearner(ctx, tx, biology.ID, learner, true)
	if err != nil || empty.Assignments == nil || len(empty.Assignments) != 0 {
		t.Fatalf("GetForLearner without rows should return empty slice: err=%v got=%+v", err, empty)
	}

	for name, call := range map[string]struct{ id, learner uuid.UUID }{
		"missing":    {uuid.New(), learner},
		"non-member": {chemistry.ID, learner},
		"anonymous":  {algebra.ID, uuid.Nil},
	} {
		if _, err := repo.GetForLearner(ctx, tx, call.id, call.learner, true); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("GetForLearner %s: want ErrRecordNotFound got=%v", name, err)
		}
	}

	if err := repo.AddMembers(ctx, tx, biology.ID, []uuid.UUID{learner}); err != nil {
		t.Fatalf("AddMembers duplicate should be ignored: %v", err)
	}
	if rows, err := repo.ListForLearner(ctx, tx, uuid.Nil, false); err != nil || len(rows) != 0 {
		t.Fatalf("anonymous listing: err=%v len=%d", err, len(rows))
	}
}

func TestLessonRepoKeepsResourceOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewLessonRepo(db, testutil.Logger(t))

	a := testutil.SeedContentNode(t, ctx, tx, "Zebra")
	b := testutil.SeedContentNode(t, ctx, tx, "Apple")
	lesson := testutil.SeedLesson(t, ctx, tx, uuid.New(), a.ID, b.ID, a.ID)

	got, err := repo.GetByID(ctx, tx, lesson.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	ids := got.ContentNodeIDs()
	want := []uuid.UUID{a.ID, b.ID, a.ID}
	if len(ids) != len(want) {
		t.Fatalf("resources: want=%d got=%d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] || got.Resources[i].Position != i {
			t.Fatalf("resource %d: want=%s@%d got=%s@%d", i, want[i], i, ids[i], got.Resources[i].Position)
		}
	}
}

func TestContentNodeRepoProjections(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContentNodeRepo(db, testutil.Logger(t))

	z := testutil.SeedContentNode(t, ctx, tx, "Zebra")
	a := testutil.SeedContentNode(t, ctx, tx, "Apple")

	slim, err := repo.GetSlimByIDs(ctx, tx, []uuid.UUID{z.ID, a.ID})
	if err != nil || len(slim) != 2 {
		t.Fatalf("GetSlimByIDs: err=%v len=%d", err, len(slim))
	}
	if slim[0].ID != a.ID {
		t.Fatalf("GetSlimByIDs: backend order should be by title")
	}
	if slim[0].Author != "" || len(slim[0].Files) != 0 {
		t.Fatalf("slim projection leaked full fields: %+v", slim[0])
	}

	full, err := repo.GetFullByID(ctx, tx, z.ID)
	if err != nil || full.Author != "author" || len(full.Files) == 0 {
		t.Fatalf("GetFullByID: err=%v node=%+v", err, full)
	}
	one, err := repo.GetSlimByID(ctx, tx, z.ID)
	if err != nil || one.Title != "Zebra" || one.License != "" {
		t.Fatalf("GetSlimByID: err=%v node=%+v", err, one)
	}
	if rows, err := repo.GetSlimByIDs(ctx, tx, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetSlimByIDs(nil): err=%v len=%d", err, len(rows))
	}
}

func TestProgressRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProgressRepo(db, testutil.Logger(t))

	learner := uuid.New()
	node := testutil.SeedContentNode(t, ctx, tx, "Video")

	if err := repo.Upsert(ctx, tx, []*types.ContentNodeProgress{{LearnerID: learner, ContentNodeID: node.ID, Progress: 0.4}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, tx, []*types.ContentNodeProgress{{LearnerID: learner, ContentNodeID: node.ID, Progress: 1.7}}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	rows, err := repo.GetByLearnerAndContentNodeIDs(ctx, tx, learner, []uuid.UUID{node.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByLearnerAndContentNodeIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].Progress != 1 {
		t.Fatalf("progress should be clamped to 1, got=%v", rows[0].Progress)
	}
	if other, _ := repo.GetByLearnerAndContentNodeIDs(ctx, tx, uuid.New(), []uuid.UUID{node.ID}); len(other) != 0 {
		t.Fatalf("other learner should see no progress")
	}
}
