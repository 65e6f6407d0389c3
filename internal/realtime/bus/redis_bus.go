package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/realtime"
)

const DefaultPrefix = "learnpages:sse"

// redisBus publishes each session channel as its own redis channel under
// prefix, so a pattern subscription on every instance picks them all up.
type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewRedisBus uses an already connected client. The bus does not own rdb;
// Close leaves the connection open.
func NewRedisBus(log *logger.Logger, rdb *goredis.Client, prefix string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &redisBus{
		log:    log.With("service", "RedisPageBus", "prefix", prefix),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (b *redisBus) topic(channel string) string {
	return b.prefix + ":" + channel
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if msg.Channel == "" {
		return fmt.Errorf("page event without channel")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode page event: %w", err)
	}
	return b.rdb.Publish(ctx, b.topic(msg.Channel), raw).Err()
}

// StartForwarder subscribes before returning so nothing published after it
// returns is missed. Messages arrive on onMsg until ctx ends.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.PSubscribe(ctx, b.topic("*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				msg, err := b.decode(m)
				if err != nil {
					b.log.Warn("bad page event payload", "channel", m.Channel, "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

// decode trusts the redis channel over the channel field in the payload.
func (b *redisBus) decode(m *goredis.Message) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
		return msg, err
	}
	channel, ok := strings.CutPrefix(m.Channel, b.prefix+":")
	if !ok || channel == "" {
		return msg, fmt.Errorf("unexpected channel %q", m.Channel)
	}
	msg.Channel = channel
	return msg, nil
}

func (b *redisBus) Close() error { return nil }
