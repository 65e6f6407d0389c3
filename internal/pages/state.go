package pages

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/learnpages/internal/domain/learn"
)

type ActionType string

const (
	ActionSetSession                    ActionType = "CORE_SET_SESSION"
	ActionSetPageName                   ActionType = "SET_PAGE_NAME"
	ActionSetTitle                      ActionType = "CORE_SET_TITLE"
	ActionSetPageState                  ActionType = "SET_PAGE_STATE"
	ActionSetPageLoading                ActionType = "CORE_SET_PAGE_LOADING"
	ActionSetError                      ActionType = "CORE_SET_ERROR"
	ActionSetLearnerClassrooms          ActionType = "SET_LEARNER_CLASSROOMS"
	ActionSetCurrentClassroom           ActionType = "SET_CURRENT_CLASSROOM"
	ActionSetCurrentLesson              ActionType = "SET_CURRENT_LESSON"
	ActionSetLessonContentNodes         ActionType = "SET_LESSON_CONTENTNODES"
	ActionSetLessonContentNodesProgress ActionType = "SET_LESSON_CONTENTNODES_PROGRESS"
	ActionSetCurrentAndNextResources    ActionType = "SET_CURRENT_AND_NEXT_LESSON_RESOURCES"
)

// Action is one state transition. Build actions with the constructors below
// so Payload always has the type Reduce expects.
type Action struct {
	Type    ActionType  `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Session struct {
	LearnerID uuid.UUID `json:"learner_id"`
	SessionID uuid.UUID `json:"session_id"`
	Locale    string    `json:"locale,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// ResourcePair is the viewer payload; Next is nil on the last resource.
type ResourcePair struct {
	Current *types.ContentNode `json:"current"`
	Next    *types.ContentNode `json:"next"`
}

// PageState is the page-specific payload. Which fields are meaningful
// depends on State.PageName.
type PageState struct {
	Classrooms           []*types.Classroom           `json:"classrooms,omitempty"`
	CurrentClassroom     *types.Classroom             `json:"currentClassroom,omitempty"`
	CurrentLesson        *types.Lesson                `json:"currentLesson,omitempty"`
	ContentNodes         []*types.ContentNode         `json:"contentNodes,omitempty"`
	ContentNodesProgress []*types.ContentNodeProgress `json:"contentNodesProgress,omitempty"`
	Content              *types.ContentNode           `json:"content,omitempty"`
	NextLessonResource   *types.ContentNode           `json:"nextLessonResource,omitempty"`
}

type State struct {
	Session   Session    `json:"session"`
	PageName  PageName   `json:"pageName"`
	Title     string     `json:"title"`
	Loading   bool       `json:"loading"`
	Error     *ErrorInfo `json:"error,omitempty"`
	PageState PageState  `json:"pageState"`
	// Version counts the actions applied to the store.
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func SetSession(s Session) Action      { return Action{Type: ActionSetSession, Payload: s} }
func SetPageName(p PageName) Action    { return Action{Type: ActionSetPageName, Payload: p} }
func SetTitle(title string) Action     { return Action{Type: ActionSetTitle, Payload: title} }
func SetPageState(ps PageState) Action { return Action{Type: ActionSetPageState, Payload: ps} }
func SetPageLoading(loading bool) Action {
	return Action{Type: ActionSetPageLoading, Payload: loading}
}
func SetError(info ErrorInfo) Action { return Action{Type: ActionSetError, Payload: info} }
func SetLearnerClassrooms(rows []*types.Classroom) Action {
	return Action{Type: ActionSetLearnerClassrooms, Payload: rows}
}
func SetCurrentClassroom(c *types.Classroom) Action {
	return Action{Type: ActionSetCurrentClassroom, Payload: c}
}
func SetCurrentLesson(l *types.Lesson) Action {
	return Action{Type: ActionSetCurrentLesson, Payload: l}
}
func SetLessonContentNodes(nodes []*types.ContentNode) Action {
	return Action{Type: ActionSetLessonContentNodes, Payload: nodes}
}
func SetLessonContentNodesProgress(rows []*types.ContentNodeProgress) Action {
	return Action{Type: ActionSetLessonContentNodesProgress, Payload: rows}
}
func SetCurrentAndNextResources(pair ResourcePair) Action {
	return Action{Type: ActionSetCurrentAndNextResources, Payload: pair}
}

// Reduce applies a to s and returns the new state. s is not modified; slices
// in the result are replaced, never appended to in place. Actions whose
// payload has the wrong type leave the state unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionSetSession:
		if v, ok := a.Payload.(Session); ok {
			s.Session = v
		}
	case ActionSetPageName:
		if v, ok := a.Payload.(PageName); ok {
			s.PageName = v
			s.Error = nil
		}
	case ActionSetTitle:
		if v, ok := a.Payload.(string); ok {
			s.Title = v
		}
	case ActionSetPageState:
		if v, ok := a.Payload.(PageState); ok {
			s.PageState = v
		}
	case ActionSetPageLoading:
		if v, ok := a.Payload.(bool); ok {
			s.Loading = v
		}
	case ActionSetError:
		if v, ok := a.Payload.(ErrorInfo); ok {
			s.Error = &v
		}
	case ActionSetLearnerClassrooms:
		if v, ok := a.Payload.([]*types.Classroom); ok {
			s.PageState.Classrooms = v
		}
	case ActionSetCurrentClassroom:
		if v, ok := a.Payload.(*types.Classroom); ok {
			s.PageState.CurrentClassroom = v
		}
	case ActionSetCurrentLesson:
		if v, ok := a.Payload.(*types.Lesson); ok {
			s.PageState.CurrentLesson = v
		}
	case ActionSetLessonContentNodes:
		if v, ok := a.Payload.([]*types.ContentNode); ok {
			s.PageState.ContentNodes = v
		}
	case ActionSetLessonContentNodesProgress:
		if v, ok := a.Payload.([]*types.ContentNodeProgress); ok {
			s.PageState.ContentNodesProgress = v
		}
	case ActionSetCurrentAndNextResources:
		if v, ok := a.Payload.(ResourcePair); ok {
			s.PageState.Content = v.Current
			s.PageState.NextLessonResource = v.Next
		}
	}
	return s
}
