package clock

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval matches how often page "now" values are refreshed.
const DefaultInterval = 10 * time.Second

// Source produces the current time on demand.
type Source interface {
	Now() time.Time
}

// System reads the wall clock, shifted by Offset (server minus local time).
type System struct {
	Offset time.Duration
}

func (s System) Now() time.Time { return time.Now().Add(s.Offset).UTC() }

// Ticker holds a "now" value that is refreshed from a Source every interval
// between Start and Stop. Readers see a value at most one interval old.
type Ticker struct {
	src      Source
	interval time.Duration

	mu        sync.RWMutex
	now       time.Time
	listeners []func(time.Time)
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewTicker(src Source, interval time.Duration) *Ticker {
	if src == nil {
		src = System{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{src: src, interval: interval, now: src.Now()}
}

func (t *Ticker) Now() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.now
}

// OnTick registers fn to be called with every refreshed value.
func (t *Ticker) OnTick(fn func(time.Time)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// Start begins refreshing. Calling Start on a running ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	go func() {
		defer close(done)
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				t.tick()
			}
		}
	}()
}

// Stop halts refreshing and waits for the loop to exit.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Ticker) tick() {
	now := t.src.Now()
	t.mu.Lock()
	t.now = now
	listeners := append([]func(time.Time){}, t.listeners...)
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(now)
	}
}
