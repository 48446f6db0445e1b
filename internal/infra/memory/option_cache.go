package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
	"golang.org/x/sync/singleflight"
)

// OptionCache caches option lists per (level, parent) with TTL so that
// re-selecting a recent parent does not hit the backend again.
type OptionCache struct {
	loader app.OptionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedOptions
}

var _ app.OptionLoader = (*OptionCache)(nil)

type cachedOptions struct {
	options   []domain.Option
	expiresAt time.Time
}

func NewOptionCache(loader app.OptionLoader, ttl time.Duration) *OptionCache {
	return &OptionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedOptions),
	}
}

func cacheKey(level int, parent string) string {
	return strconv.Itoa(level) + ":" + parent
}

func (c *OptionCache) Options(ctx context.Context, level int, parent string) ([]domain.Option, error) {
	key := cacheKey(level, parent)
	if opts, ok := c.lookup(key); ok {
		return opts, nil
	}

	// The shared load outlives any single caller: a selector superseding its
	// own fetch must not fail the other callers waiting on the same key.
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if opts, ok := c.lookup(key); ok {
			return opts, nil
		}
		opts, err := c.loader.Options(context.WithoutCancel(ctx), level, parent)
		if err != nil {
			return nil, err
		}
		// Empty lists are not kept so a newly created child shows up on the next fetch.
		if len(opts) > 0 {
			c.mu.Lock()
			c.cache[key] = cachedOptions{
				options:   opts,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
			c.mu.Unlock()
		}
		return opts, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneOptions(res.Val.([]domain.Option)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached options of one parent, e.g. after a create.
func (c *OptionCache) Invalidate(_ context.Context, level int, parent string) error {
	c.mu.Lock()
	delete(c.cache, cacheKey(level, parent))
	c.mu.Unlock()
	return nil
}

func (c *OptionCache) lookup(key string) ([]domain.Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return cloneOptions(entry.options), true
}

func (c *OptionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneOptions(opts []domain.Option) []domain.Option {
	if opts == nil {
		return nil
	}
	return append([]domain.Option(nil), opts...)
}
