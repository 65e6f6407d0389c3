package realtime

type SSEEvent string

const (
	// SSEEventPageAction carries one applied page action and the state it
	// produced.
	SSEEventPageAction SSEEvent = "PageAction"
	// SSEEventPageState is the snapshot sent when a stream opens.
	SSEEventPageState SSEEvent = "PageState"
)

// SSEMessage is one frame on a session channel. ID, when set, is written as
// the SSE id field so a client can tell where it left off.
type SSEMessage struct {
	Channel string      `json:"channel"`
	ID      string      `json:"id,omitempty"`
	Event   SSEEvent    `json:"event"`
	Data    interface{} `json:"data,omitempty"`
}
