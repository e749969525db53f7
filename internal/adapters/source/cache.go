package source

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/stemmap/pkg/logger"
	"github.com/okian/stemmap/pkg/metrics"
)

// CacheClient is the subset of *redis.Client used by CachedFetcher.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedFetcher keeps the last payload of another Fetcher in Redis for a TTL.
// A miss or any Redis failure falls through to the wrapped fetcher.
type CachedFetcher struct {
	next   Fetcher
	client CacheClient
	key    string
	ttl    time.Duration
	log    logger.Logger
}

// NewCachedFetcher wraps next. The cache key is derived from next.Name().
func NewCachedFetcher(next Fetcher, client CacheClient, ttl time.Duration, log logger.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		client: client,
		key:    "stemmap:payload:" + next.Name(),
		ttl:    ttl,
		log:    log,
	}
}

func (f *CachedFetcher) Name() string { return f.next.Name() }

// Fetch returns the cached payload or fetches and stores a fresh one.
func (f *CachedFetcher) Fetch(ctx context.Context) ([]byte, error) {
	b, err := f.client.Get(ctx, f.key).Bytes()
	switch {
	case err == nil:
		metrics.RecordCacheHit()
		return b, nil
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheMiss()
	default:
		metrics.RecordCacheError()
		f.log.Warn(ctx, "payload cache read failed", logger.String("key", f.key), logger.Error(err))
	}

	b, err = f.next.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.client.Set(ctx, f.key, b, f.ttl).Err(); err != nil {
		metrics.RecordCacheError()
		f.log.Warn(ctx, "payload cache write failed", logger.String("key", f.key), logger.Error(err))
	}
	return b, nil
}
