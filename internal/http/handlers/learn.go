package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/http/response"
	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/apierr"
	"github.com/yungbote/learnpages/internal/services"
)

type LearnHandler struct {
	pageService services.PageService
}

func NewLearnHandler(pageService services.PageService) *LearnHandler {
	return &LearnHandler{pageService: pageService}
}

// GET /api/learn/classes
func (h *LearnHandler) ListClasses(c *gin.Context) {
	h.show(c, pages.AllClasses(), services.ShowOptions{})
}

// GET /api/learn/classes/:id
func (h *LearnHandler) GetClass(c *gin.Context) {
	classID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.show(c, pages.ClassAssignments(classID), services.ShowOptions{})
}

// GET /api/learn/lessons/:id
func (h *LearnHandler) GetLesson(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	await, _ := strconv.ParseBool(c.Query("await_progress"))
	h.show(c, pages.LessonPlaylist(lessonID), services.ShowOptions{AwaitProgress: await})
}

// GET /api/learn/lessons/:id/resources/:index
func (h *LearnHandler) GetLessonResource(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument, fmt.Errorf("invalid resource index %q", c.Param("index")))
		return
	}
	h.show(c, pages.LessonResourceViewer(lessonID, index), services.ShowOptions{})
}

// GET /api/learn/state
func (h *LearnHandler) GetState(c *gin.Context) {
	state, err := h.pageService.Snapshot(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

func (h *LearnHandler) show(c *gin.Context, intent pages.Intent, opts services.ShowOptions) {
	state, err := h.pageService.Show(c.Request.Context(), intent, opts)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument, fmt.Errorf("invalid %s: %w", name, err))
		return uuid.Nil, false
	}
	return id, true
}
