package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/platform/logger"
)

type SSEClient struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Channels  map[string]bool
	Outbound  chan SSEMessage
	done      chan struct{}
	Logger    *logger.Logger

	opening *SSEMessage
}

// StartFrom makes snapshot the first frame the client receives and drops
// queued frames the snapshot already covers. Call it after the client joins
// its channel and before ServeHTTP.
func (c *SSEClient) StartFrom(snapshot SSEMessage) {
	c.opening = &snapshot
}

func (c *SSEClient) covered(msg SSEMessage) bool {
	return c.opening != nil && msg.Seq != 0 && msg.Seq <= c.opening.Seq
}

// SessionChannel names the channel a session's page actions are sent on.
func SessionChannel(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}
