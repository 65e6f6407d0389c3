// Package seed loads YAML fixtures into the learn tables.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/data/repos"
	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

type Fixture struct {
	Classrooms   []Classroom   `yaml:"classrooms"`
	Lessons      []Lesson      `yaml:"lessons"`
	ContentNodes []ContentNode `yaml:"content_nodes"`
	Progress     []Progress    `yaml:"progress"`
	Memberships  []Membership  `yaml:"memberships"`
}

type Classroom struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Metadata    interface{}  `yaml:"metadata"`
	Assignments []Assignment `yaml:"assignments"`
}

type Assignment struct {
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
	Title  string `yaml:"title"`
	// Active defaults to true.
	Active *bool `yaml:"active"`
}

type Lesson struct {
	ID          string   `yaml:"id"`
	Classroom   string   `yaml:"classroom"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Resources   []string `yaml:"resources"`
}

type ContentNode struct {
	ID          string      `yaml:"id"`
	Parent      string      `yaml:"parent"`
	Title       string      `yaml:"title"`
	Kind        string      `yaml:"kind"`
	Description string      `yaml:"description"`
	Thumbnail   string      `yaml:"thumbnail"`
	Author      string      `yaml:"author"`
	License     string      `yaml:"license"`
	Lang        string      `yaml:"lang"`
	Files       interface{} `yaml:"files"`
	Options     interface{} `yaml:"options"`
}

type Progress struct {
	Learner     string  `yaml:"learner"`
	ContentNode string  `yaml:"content_node"`
	Progress    float64 `yaml:"progress"`
	Kind        string  `yaml:"kind"`
}

type Membership struct {
	Classroom string   `yaml:"classroom"`
	Learners  []string `yaml:"learners"`
}

// Summary counts the rows written by a load.
type Summary struct {
	Classrooms   int `json:"classrooms"`
	Assignments  int `json:"assignments"`
	Lessons      int `json:"lessons"`
	ContentNodes int `json:"content_nodes"`
	Progress     int `json:"progress"`
	Memberships  int `json:"memberships"`
}

func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

func LoadFile(ctx context.Context, db *gorm.DB, log *logger.Logger, path string) (Summary, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer fh.Close()
	f, err := Parse(fh)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	return Load(ctx, db, log, f)
}

// Load writes f in one transaction. Nothing is written if any row fails.
func Load(ctx context.Context, db *gorm.DB, log *logger.Logger, f *Fixture) (Summary, error) {
	log = log.With("component", "SeedLoader")
	rows, err := f.rows()
	if err != nil {
		return Summary{}, err
	}

	classroomRepo := repos.NewClassroomRepo(db, log)
	lessonRepo := repos.NewLessonRepo(db, log)
	nodeRepo := repos.NewContentNodeRepo(db, log)
	progressRepo := repos.NewProgressRepo(db, log)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := nodeRepo.Create(ctx, tx, rows.nodes); err != nil {
			return fmt.Errorf("content nodes: %w", err)
		}
		if _, err := classroomRepo.Create(ctx, tx, rows.classrooms); err != nil {
			return fmt.Errorf("classrooms: %w", err)
		}
		if _, err := lessonRepo.Create(ctx, tx, rows.lessons); err != nil {
			return fmt.Errorf("lessons: %w", err)
		}
		for _, m := range rows.memberships {
			if err := classroomRepo.AddMembers(ctx, tx, m.classroomID, m.learners); err != nil {
				return fmt.Errorf("memberships: %w", err)
			}
		}
		if err := progressRepo.Upsert(ctx, tx, rows.progress); err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	log.Info("fixture loaded",
		"classrooms", rows.summary.Classrooms,
		"lessons", rows.summary.Lessons,
		"content_nodes", rows.summary.ContentNodes,
	)
	return rows.summary, nil
}

type membershipRows struct {
	classroomID uuid.UUID
	learners    []uuid.UUID
}

type fixtureRows struct {
	classrooms  []*types.Classroom
	lessons     []*types.Lesson
	nodes       []*types.ContentNode
	progress    []*types.ContentNodeProgress
	memberships []membershipRows
	summary     Summary
}

func (f *Fixture) rows() (*fixtureRows, error) {
	out := &fixtureRows{}

	for i, c := range f.ContentNodes {
		id, err := parseID(c.ID, true)
		if err != nil {
			return nil, fmt.Errorf("content_nodes[%d].id: %w", i, err)
		}
		parent, err := parseID(c.Parent, true)
		if err != nil {
			return nil, fmt.Errorf("content_nodes[%d].parent: %w", i, err)
		}
		files, err := toJSON(c.Files)
		if err != nil {
			return nil, fmt.Errorf("content_nodes[%d].files: %w", i, err)
		}
		options, err := toJSON(c.Options)
		if err != nil {
			return nil, fmt.Errorf("content_nodes[%d].options: %w", i, err)
		}
		kind := c.Kind
		if kind == "" {
			kind = "document"
		}
		node := &types.ContentNode{
			ID: id, Title: c.Title, Kind: kind, Description: c.Description,
			Thumbnail: c.Thumbnail, Author: c.Author, License: c.License, Lang: c.Lang,
			Files: files, Options: options,
		}
		if parent != uuid.Nil {
			node.ParentID = &parent
		}
		out.nodes = append(out.nodes, node)
	}

	for i, c := range f.Classrooms {
		id, err := parseID(c.ID, true)
		if err != nil {
			return nil, fmt.Errorf("classrooms[%d].id: %w", i, err)
		}
		if id == uuid.Nil {
			id = uuid.New()
		}
		meta, err := toJSON(c.Metadata)
		if err != nil {
			return nil, fmt.Errorf("classrooms[%d].metadata: %w", i, err)
		}
		room := &types.Classroom{ID: id, Name: c.Name, Metadata: meta}
		for j, a := range c.Assignments {
			target, err := parseID(a.Target, false)
			if err != nil {
				return nil, fmt.Errorf("classrooms[%d].assignments[%d].target: %w", i, j, err)
			}
			kind := types.AssignmentKind(strings.ToLower(a.Kind))
			if kind != types.AssignmentKindLesson && kind != types.AssignmentKindExam {
				return nil, fmt.Errorf("classrooms[%d].assignments[%d].kind: unknown %q", i, j, a.Kind)
			}
			active := a.Active == nil || *a.Active
			room.Assignments = append(room.Assignments, &types.Assignment{
				ClassroomID: id, Kind: kind, TargetID: target, Title: a.Title, Active: active, Position: j,
			})
		}
		out.summary.Assignments += len(room.Assignments)
		out.classrooms = append(out.classrooms, room)
	}

	for i, l := range f.Lessons {
		id, err := parseID(l.ID, true)
		if err != nil {
			return nil, fmt.Errorf("lessons[%d].id: %w", i, err)
		}
		classroomID, err := parseID(l.Classroom, true)
		if err != nil {
			return nil, fmt.Errorf("lessons[%d].classroom: %w", i, err)
		}
		lesson := &types.Lesson{ID: id, ClassroomID: classroomID, Title: l.Title, Description: l.Description, Active: true}
		for j, raw := range l.Resources {
			nodeID, err := parseID(raw, false)
			if err != nil {
				return nil, fmt.Errorf("lessons[%d].resources[%d]: %w", i, j, err)
			}
			lesson.Resources = append(lesson.Resources, types.LessonResource{ContentNodeID: nodeID})
		}
		out.lessons = append(out.lessons, lesson)
	}

	for i, m := range f.Memberships {
		classroomID, err := parseID(m.Classroom, false)
		if err != nil {
			return nil, fmt.Errorf("memberships[%d].classroom: %w", i, err)
		}
		rows := membershipRows{classroomID: classroomID}
		for j, raw := range m.Learners {
			learnerID, err := parseID(raw, false)
			if err != nil {
				return nil, fmt.Errorf("memberships[%d].learners[%d]: %w", i, j, err)
			}
			rows.learners = append(rows.learners, learnerID)
		}
		out.summary.Memberships += len(rows.learners)
		out.memberships = append(out.memberships, rows)
	}

	for i, p := range f.Progress {
		learnerID, err := parseID(p.Learner, false)
		if err != nil {
			return nil, fmt.Errorf("progress[%d].learner: %w", i, err)
		}
		nodeID, err := parseID(p.ContentNode, false)
		if err != nil {
			return nil, fmt.Errorf("progress[%d].content_node: %w", i, err)
		}
		out.progress = append(out.progress, &types.ContentNodeProgress{
			LearnerID: learnerID, ContentNodeID: nodeID, Progress: p.Progress, Kind: p.Kind,
		})
	}

	out.summary.Classrooms = len(out.classrooms)
	out.summary.Lessons = len(out.lessons)
	out.summary.ContentNodes = len(out.nodes)
	out.summary.Progress = len(out.progress)
	return out, nil
}

func parseID(raw string, optional bool) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if optional {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("required")
	}
	return uuid.Parse(raw)
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
