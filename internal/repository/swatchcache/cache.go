// Package swatchcache memoizes per-item color descriptors computed from
// catalog photos. The cache is process-wide, append-only, and never
// evicted; with catalog sizes bounded by the artifact this is an
// accepted growth tradeoff. A failed computation is cached too, so an
// item is fetched at most once per process lifetime even when the first
// attempt failed transiently.
package swatchcache

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/roomcraft/reco/internal/domain/color"
)

// Fetcher downloads image bytes with a bounded timeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ExtractFunc computes a descriptor from raw image bytes.
type ExtractFunc func(data []byte) (color.Lab, error)

type entry struct {
	lab color.Lab
	ok  bool
}

// Cache is the process-wide lazy color descriptor cache.
type Cache struct {
	fetcher    Fetcher
	extract    ExtractFunc
	entries    sync.Map // item id -> entry
	locks      sync.Map // item id -> *sync.Mutex
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a cache. cacheTotal is a counter vec with label "result"
// ("hit"/"miss"), passed explicitly.
func New(fetcher Fetcher, extract ExtractFunc, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		fetcher:    fetcher,
		extract:    extract,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Lookup returns the item's descriptor, computing it from the first
// usable URL on first sight of the id. The second return is false when
// every candidate URL failed (and that outcome is now cached).
// Concurrent first lookups of one id are serialized per id, so the
// underlying fetch happens once; lookups of different ids do not block
// each other.
func (c *Cache) Lookup(ctx context.Context, id string, urls []string) (color.Lab, bool) {
	if v, ok := c.entries.Load(id); ok {
		c.incCache("hit")
		e := v.(entry)
		return e.lab, e.ok
	}

	muAny, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// Double-check: another goroutine may have finished while we waited.
	if v, ok := c.entries.Load(id); ok {
		c.incCache("hit")
		e := v.(entry)
		return e.lab, e.ok
	}

	c.incCache("miss")
	e := c.compute(ctx, id, urls)
	c.entries.Store(id, e)
	return e.lab, e.ok
}

// Len returns the number of cached descriptors (successful computations only).
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, v any) bool {
		if v.(entry).ok {
			n++
		}
		return true
	})
	return n
}

func (c *Cache) compute(ctx context.Context, id string, urls []string) entry {
	for _, u := range urls {
		data, err := c.fetcher.Fetch(ctx, u)
		if err != nil {
			c.logger.Warn("Failed to fetch item image",
				zap.String("item_id", id), zap.String("url", u), zap.Error(err))
			continue
		}
		lab, err := c.extract(data)
		if err != nil {
			c.logger.Warn("Failed to extract item color",
				zap.String("item_id", id), zap.String("url", u), zap.Error(err))
			continue
		}
		return entry{lab: lab, ok: true}
	}
	return entry{}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
