package pages

import (
	"context"
	"sync"

	types "github.com/yungbote/learnpages/internal/domain/learn"
)

// ProgressTask tracks the playlist's background progress fetch. A nil
// *ProgressTask means no fetch was issued; all methods are safe on nil.
type ProgressTask struct {
	done chan struct{}

	mu   sync.Mutex
	rows []*types.ContentNodeProgress
	err  error
}

func newProgressTask() *ProgressTask {
	return &ProgressTask{done: make(chan struct{})}
}

func (t *ProgressTask) finish(rows []*types.ContentNodeProgress, err error) {
	t.mu.Lock()
	t.rows, t.err = rows, err
	t.mu.Unlock()
	close(t.done)
}

// Done is closed once the fetch settles.
func (t *ProgressTask) Done() <-chan struct{} {
	if t == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return t.done
}

// Wait blocks until the fetch settles or ctx ends, returning the fetch error.
func (t *ProgressTask) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ProgressTask) Err() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *ProgressTask) Progress() []*types.ContentNodeProgress {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows
}
