package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// OptionCache shares option lists between console instances and falls back
// to a loader on cache miss. Each list is stored in order as:
// RPUSH options:{level}:{parent} {json option}...
type OptionCache struct {
	client *redis.Client
	loader app.OptionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

var _ app.OptionLoader = (*OptionCache)(nil)

func NewOptionCache(client *redis.Client, loader app.OptionLoader, ttl time.Duration) *OptionCache {
	return &OptionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *OptionCache) Options(ctx context.Context, level int, parent string) ([]domain.Option, error) {
	key := c.key(level, parent)
	if opts, ok := c.cached(ctx, key); ok {
		return opts, nil
	}

	// Detached from the first caller so its cancellation does not fail the
	// callers that joined the flight.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if opts, ok := c.cached(loadCtx, key); ok {
			return opts, nil
		}
		opts, err := c.loader.Options(loadCtx, level, parent)
		if err != nil {
			return nil, err
		}
		if len(opts) == 0 {
			return opts, nil
		}

		values := make([]interface{}, 0, len(opts))
		for _, opt := range opts {
			raw, err := json.Marshal(opt)
			if err != nil {
				return nil, err
			}
			values = append(values, string(raw))
		}
		pipe := c.client.TxPipeline()
		pipe.Del(loadCtx, key)
		pipe.RPush(loadCtx, key, values...)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(loadCtx, key, ttl)
		}
		// a cache write failure only costs a future miss
		_, _ = pipe.Exec(loadCtx)
		return opts, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Option), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached options of one parent.
func (c *OptionCache) Invalidate(ctx context.Context, level int, parent string) error {
	return c.client.Del(ctx, c.key(level, parent)).Err()
}

func (c *OptionCache) cached(ctx context.Context, key string) ([]domain.Option, bool) {
	raw, err := c.client.LRange(ctx, key, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	opts := make([]domain.Option, 0, len(raw))
	for _, item := range raw {
		var opt domain.Option
		if err := json.Unmarshal([]byte(item), &opt); err != nil {
			return nil, false
		}
		opts = append(opts, opt)
	}
	return opts, true
}

func (c *OptionCache) key(level int, parent string) string {
	return "options:" + strconv.Itoa(level) + ":" + parent
}

func (c *OptionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
