package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/pages"
)

func TestParseIntent(t *testing.T) {
	lesson := uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	tests := []struct {
		args    []string
		want    pages.Intent
		wantErr bool
	}{
		{args: []string{"classes"}, want: pages.AllClasses()},
		{args: []string{"ALL_CLASSES"}, want: pages.AllClasses()},
		{args: []string{"class", lesson.String()}, want: pages.ClassAssignments(lesson)},
		{args: []string{"lesson", lesson.String()}, want: pages.LessonPlaylist(lesson)},
		{args: []string{"resource", lesson.String(), "2"}, want: pages.LessonResourceViewer(lesson, 2)},
		{args: []string{"classes", "extra"}, wantErr: true},
		{args: []string{"class", "nope"}, wantErr: true},
		{args: []string{"resource", lesson.String(), "-1"}, wantErr: true},
		{args: []string{"settings"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := parseIntent(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error got intent=%v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIntent: %v", err)
			}
			if got != tt.want {
				t.Fatalf("intent: want=%v got=%v", tt.want, got)
			}
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func useTempDB(t *testing.T) {
	t.Helper()
	t.Setenv("LEARNPAGES_LOG_MODE", "test")
	t.Setenv("LEARNPAGES_DB_DRIVER", "sqlite")
	t.Setenv("LEARNPAGES_DB_DSN", "file:"+filepath.Join(t.TempDir(), "cli.db")+"?_foreign_keys=off")
	t.Setenv("LEARNPAGES_REDIS_ADDR", "")
	t.Setenv("LEARNPAGES_CONFIG", "")
}

func TestSeedThenShowLesson(t *testing.T) {
	useTempDB(t)

	out, err := run(t, "seed", filepath.Join("..", "..", "..", "internal", "data", "seed", "testdata", "demo.yaml"))
	if err != nil {
		t.Fatalf("seed: %v (%s)", err, out)
	}
	if !strings.Contains(out, `"lessons": 1`) {
		t.Fatalf("seed summary: got=%s", out)
	}

	out, err = run(t, "show", "lesson", "00000000-0000-0000-0000-0000000000b1",
		"--learner", "00000000-0000-0000-0000-00000000f001")
	if err != nil {
		t.Fatalf("show: %v (%s)", err, out)
	}
	var state pages.State
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("decode state: %v (%s)", err, out)
	}
	if state.PageName != pages.PageLessonPlaylist {
		t.Fatalf("page: want=%s got=%s", pages.PageLessonPlaylist, state.PageName)
	}
	var titles []string
	for _, n := range state.PageState.ContentNodes {
		titles = append(titles, n.Title)
	}
	want := []string{"Adding small numbers", "Number line", "Counting to ten"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Fatalf("playlist order: want=%v got=%v", want, titles)
	}
	if len(state.PageState.ContentNodesProgress) != 1 {
		t.Fatalf("progress: want=1 got=%d", len(state.PageState.ContentNodesProgress))
	}
}

func TestShowUnknownClassFails(t *testing.T) {
	useTempDB(t)
	if out, err := run(t, "migrate"); err != nil {
		t.Fatalf("migrate: %v (%s)", err, out)
	}
	out, err := run(t, "show", "class", uuid.NewString(), "--learner", uuid.NewString())
	if err == nil {
		t.Fatalf("want error for unknown class, got output=%s", out)
	}
	if !strings.Contains(out, `"code": "not_found"`) {
		t.Fatalf("state should carry the error: got=%s", out)
	}
}

func TestTokenRequiresLearner(t *testing.T) {
	useTempDB(t)
	if _, err := run(t, "token"); err == nil {
		t.Fatalf("want error without --learner")
	}
	out, err := run(t, "token", "--learner", uuid.NewString())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out), "."); len(parts) != 3 {
		t.Fatalf("token: want JWT got=%q", out)
	}
}
