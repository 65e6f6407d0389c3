package realtime

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

const publishQueueSize = 256

// Publisher delivers a message to every instance's hub. bus.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

// SnapshotMessage is the PageState frame that opens a stream.
func SnapshotMessage(sessionID uuid.UUID, s pages.State) SSEMessage {
	return SSEMessage{
		Channel: SessionChannel(sessionID),
		ID:      strconv.FormatUint(s.Version, 10),
		Seq:     s.Version,
		Event:   SSEEventPageState,
		Data:    s,
	}
}

// PageActionEvent is the SSEEventPageAction payload.
type PageActionEvent struct {
	Action pages.Action `json:"action"`
	State  pages.State  `json:"state"`
}

// StorePublisher streams the actions applied to session stores. Without a
// Publisher messages go straight to the local hub; with one they are queued
// and published in order by Run.
type StorePublisher struct {
	log   *logger.Logger
	hub   *SSEHub
	pub   Publisher
	queue chan SSEMessage
}

func NewStorePublisher(log *logger.Logger, hub *SSEHub, pub Publisher) (*StorePublisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if hub == nil && pub == nil {
		return nil, fmt.Errorf("hub or publisher required")
	}
	p := &StorePublisher{log: log.With("component", "StorePublisher"), hub: hub, pub: pub}
	if pub != nil {
		p.queue = make(chan SSEMessage, publishQueueSize)
	}
	return p, nil
}

// Attach streams st's actions on the session channel and returns a function
// that detaches it. Each action is numbered with the store version it
// produced.
func (p *StorePublisher) Attach(sessionID uuid.UUID, st *pages.Store) func() {
	channel := SessionChannel(sessionID)
	return st.Subscribe(func(a pages.Action, s pages.State) {
		p.emit(SSEMessage{
			Channel: channel,
			ID:      strconv.FormatUint(s.Version, 10),
			Seq:     s.Version,
			Event:   SSEEventPageAction,
			Data:    PageActionEvent{Action: a, State: s},
		})
	})
}

// emit runs under the store lock and must not block.
func (p *StorePublisher) emit(msg SSEMessage) {
	if p.queue == nil {
		p.hub.Broadcast(msg)
		return
	}
	select {
	case p.queue <- msg:
	default:
		p.log.Warn("Dropping page action; publish queue full", "channel", msg.Channel)
	}
}

// Run drains the publish queue until ctx ends. It returns at once when there
// is no Publisher.
func (p *StorePublisher) Run(ctx context.Context) {
	if p.queue == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := p.pub.Publish(ctx, msg); err != nil {
				p.log.Warn("page action publish failed", "channel", msg.Channel, "error", err)
				if p.hub != nil {
					p.hub.Broadcast(msg)
				}
			}
		}
	}
}
