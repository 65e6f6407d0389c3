package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// KV is the byte store behind the source cache.
type KV interface {
	// Get reports ok=false with a nil error on a miss.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type redisKV struct {
	rdb    goredis.Cmdable
	prefix string
}

// NewRedisKV stores entries under prefix in rdb.
func NewRedisKV(rdb goredis.Cmdable, prefix string) KV {
	return &redisKV{rdb: rdb, prefix: prefix}
}

func (k *redisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := k.rdb.Get(ctx, k.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (k *redisKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return k.rdb.Set(ctx, k.prefix+key, val, ttl).Err()
}
