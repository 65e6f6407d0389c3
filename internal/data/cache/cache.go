// Package cache decorates the page sources with a read-through model cache.
//
// Single-model reads are served from the cache unless the caller forces a
// fresh fetch, and every model that passes through is written back. Listing
// classrooms without assignments writes those partial records under the same
// key a later GetByID reads, which is why assignment pages must force a
// fresh fetch. Classroom entries are keyed per learner since reading one
// requires membership; anonymous reads bypass the cache.
//
// Lessons are not cached: every page reads them with forceFresh.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/learnpages/internal/domain/learn"
	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

const DefaultTTL = 5 * time.Minute

func classroomKey(learnerID, id uuid.UUID) string {
	return "classroom:" + learnerID.String() + ":" + id.String()
}
func fullNodeKey(id uuid.UUID) string { return "contentnode:full:" + id.String() }
func slimNodeKey(id uuid.UUID) string { return "contentnode:slim:" + id.String() }

// Observer receives one call per cache lookup.
type Observer interface {
	ObserveCache(kind, result string)
}

type Options struct {
	TTL      time.Duration
	Observer Observer
}

type nopObserver struct{}

func (nopObserver) ObserveCache(string, string) {}

// store holds the shared read/write helpers. Failures are logged and never
// returned: a broken cache degrades to the inner source.
type store struct {
	kv  KV
	ttl time.Duration
	log *logger.Logger
	obs Observer
}

func (s *store) get(ctx context.Context, kind, key string, dst interface{}) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.obs.ObserveCache(kind, "error")
		s.log.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		s.obs.ObserveCache(kind, "miss")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.obs.ObserveCache(kind, "error")
		s.log.Warn("cache entry undecodable", "key", key, "error", err)
		return false
	}
	s.obs.ObserveCache(kind, "hit")
	return true
}

func (s *store) put(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Wrap decorates the classroom and content sources of inner. Lessons and
// progress pass through untouched.
func Wrap(inner pages.Sources, kv KV, opts Options, log *logger.Logger) pages.Sources {
	s := &store{kv: kv, ttl: opts.TTL, obs: opts.Observer, log: log.With("component", "SourceCache")}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.obs == nil {
		s.obs = nopObserver{}
	}
	return pages.Sources{
		Classrooms: &classrooms{store: s, inner: inner.Classrooms},
		Lessons:    inner.Lessons,
		Content:    &content{store: s, inner: inner.Content},
		Progress:   inner.Progress,
	}
}

type classrooms struct {
	*store
	inner pages.ClassroomSource
}

func (c *classrooms) ListForLearner(ctx context.Context, opts types.ListClassroomsOptions) ([]*types.Classroom, error) {
	rows, err := c.inner.ListForLearner(ctx, opts)
	if err != nil {
		return nil, err
	}
	learnerID := ctxutil.LearnerID(ctx)
	if learnerID == uuid.Nil {
		return rows, nil
	}
	for _, row := range rows {
		if row != nil {
			c.put(ctx, classroomKey(learnerID, row.ID), row)
		}
	}
	return rows, nil
}

func (c *classrooms) GetByID(ctx context.Context, id uuid.UUID, forceFresh bool) (*types.Classroom, error) {
	learnerID := ctxutil.LearnerID(ctx)
	if learnerID == uuid.Nil {
		return c.inner.GetByID(ctx, id, forceFresh)
	}
	key := classroomKey(learnerID, id)
	if !forceFresh {
		var cached types.Classroom
		if c.get(ctx, "classroom", key, &cached) {
			return &cached, nil
		}
	}
	row, err := c.inner.GetByID(ctx, id, forceFresh)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, row)
	return row, nil
}

type content struct {
	*store
	inner pages.ContentSource
}

func (c *content) GetSlimBatch(ctx context.Context, ids []uuid.UUID) ([]*types.ContentNode, error) {
	rows, err := c.inner.GetSlimBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row != nil {
			c.put(ctx, slimNodeKey(row.ID), row)
		}
	}
	return rows, nil
}

func (c *content) GetFull(ctx context.Context, id uuid.UUID) (*types.ContentNode, error) {
	var cached types.ContentNode
	if c.get(ctx, "contentnode_full", fullNodeKey(id), &cached) {
		return &cached, nil
	}
	row, err := c.inner.GetFull(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, fullNodeKey(id), row)
	return row, nil
}

func (c *content) GetSlim(ctx context.Context, id uuid.UUID) (*types.ContentNode, error) {
	var cached types.ContentNode
	if c.get(ctx, "contentnode_slim", slimNodeKey(id), &cached) {
		return &cached, nil
	}
	row, err := c.inner.GetSlim(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, slimNodeKey(id), row)
	return row, nil
}
