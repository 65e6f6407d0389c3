package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/platform/logger"
)

const (
	outboundBuffer    = 32
	heartbeatInterval = 15 * time.Second
)

// SSEHub routes session channel messages to the streams open on this
// instance.
type SSEHub struct {
	mu       sync.RWMutex
	log      *logger.Logger
	channels map[string]map[*SSEClient]struct{}
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		log:      log.With("component", "SSEHub"),
		channels: make(map[string]map[*SSEClient]struct{}),
	}
}

func (hub *SSEHub) NewSSEClient(sessionID uuid.UUID) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:        id,
		SessionID: sessionID,
		Channels:  make(map[string]bool),
		Outbound:  make(chan SSEMessage, outboundBuffer),
		done:      make(chan struct{}),
		Logger:    hub.log.With("client_id", id, "session_id", sessionID),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	client.Channels[channel] = true
	set := hub.channels[channel]
	if set == nil {
		set = make(map[*SSEClient]struct{})
		hub.channels[channel] = set
	}
	set[client] = struct{}{}
	client.Logger.Debug("stream subscribed", "channel", channel)
}

func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for channel := range client.Channels {
		set := hub.channels[channel]
		delete(set, client)
		if len(set) == 0 {
			delete(hub.channels, channel)
		}
	}
	client.Channels = make(map[string]bool)
}

// HasSubscribers reports whether any client listens on channel.
func (hub *SSEHub) HasSubscribers(channel string) bool {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.channels[channel]) > 0
}

// Broadcast never blocks; a client with a full buffer misses the message.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for c := range hub.channels[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			c.Logger.Warn("Dropping page event; outbound buffer full", "event", msg.Event, "id", msg.ID)
		}
	}
}

// ServeHTTP streams the client's messages until the request ends or the
// client is closed.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	flusher.Flush()

	if client.opening != nil {
		if err := writeFrame(w, *client.opening); err != nil {
			client.Logger.Warn("Failed to encode page snapshot", "error", err)
			return
		}
		flusher.Flush()
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			client.Logger.Debug("stream closed by peer", "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			if client.covered(msg) {
				continue
			}
			if err := writeFrame(w, msg); err != nil {
				client.Logger.Warn("Failed to encode page event", "event", msg.Event, "error", err)
				continue
			}
		}
		flusher.Flush()
	}
}

func writeFrame(w http.ResponseWriter, msg SSEMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", msg.Event)
	if msg.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(&b, "data: %s\n\n", data)
	_, err = w.Write([]byte(b.String()))
	return err
}

func (hub *SSEHub) CloseClient(client *SSEClient) {
	close(client.done)
	hub.RemoveClient(client)
	close(client.Outbound)
}
