package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/http/response"
	"github.com/yungbote/learnpages/internal/observability"
	"github.com/yungbote/learnpages/internal/platform/apierr"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/realtime"
	"github.com/yungbote/learnpages/internal/services"
)

type RealtimeHandler struct {
	log         *logger.Logger
	hub         *realtime.SSEHub
	pageService services.PageService
	metrics     *observability.Metrics
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, pageService services.PageService, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{
		log:         log.With("handler", "RealtimeHandler"),
		hub:         hub,
		pageService: pageService,
		metrics:     metrics,
	}
}

// GET /api/learn/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument, fmt.Errorf("missing session id"))
		return
	}

	// Resolving the store attaches the publisher before the client joins.
	st, err := h.pageService.Store(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	client := h.hub.NewSSEClient(rd.SessionID)
	h.hub.AddChannel(client, realtime.SessionChannel(rd.SessionID))
	// Taken after joining, so every later action is queued and every earlier
	// one is in the snapshot.
	client.StartFrom(realtime.SnapshotMessage(rd.SessionID, st.Snapshot()))

	h.metrics.SSEClientInc()
	defer h.metrics.SSEClientDec()
	h.log.Info("SSE stream open", append([]interface{}{"session_id", rd.SessionID.String(), "client_id", client.ID}, ctxutil.LogFields(ctx)...)...)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
}
