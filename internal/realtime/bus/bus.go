package bus

import (
	"context"

	"github.com/yungbote/learnpages/internal/realtime"
)

// Bus fans SSE messages out to every instance. Each instance forwards what
// it receives into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
