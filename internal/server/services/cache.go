package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ActivityCache holds user activity report pages between accepted
// sightings. Callers take Generation before computing a page and hand it
// back to Add, so a page computed before a Purge is never served after it.
type ActivityCache interface {
	Generation(ctx context.Context) uint64
	Get(ctx context.Context, page int) (models.Page[models.ObserverActivity], bool)
	Add(ctx context.Context, gen uint64, page int, v models.Page[models.ObserverActivity])
	Purge(ctx context.Context)
}

// ReportCache is the in-process ActivityCache.
type ReportCache struct {
	lru        *expirable.LRU[int, models.Page[models.ObserverActivity]]
	generation atomic.Uint64
	metrics    *metrics.Metrics
}

// NewReportCache returns a cache of size pages living for ttl. A size of
// zero disables caching.
func NewReportCache(size int, ttl time.Duration, m *metrics.Metrics) *ReportCache {
	c := &ReportCache{metrics: m}
	if size > 0 {
		c.lru = expirable.NewLRU[int, models.Page[models.ObserverActivity]](size, nil, ttl)
	}
	return c
}

func (c *ReportCache) Generation(_ context.Context) uint64 {
	if c == nil {
		return 0
	}
	return c.generation.Load()
}

func (c *ReportCache) Get(_ context.Context, page int) (models.Page[models.ObserverActivity], bool) {
	if c == nil || c.lru == nil {
		return models.Page[models.ObserverActivity]{}, false
	}
	v, ok := c.lru.Get(page)
	if ok {
		c.metrics.CacheHits.Inc()
	} else {
		c.metrics.CacheMisses.Inc()
	}
	return v, ok
}

// Add stores v unless the cache was purged since gen was taken.
func (c *ReportCache) Add(_ context.Context, gen uint64, page int, v models.Page[models.ObserverActivity]) {
	if c == nil || c.lru == nil || c.generation.Load() != gen {
		return
	}
	c.lru.Add(page, v)
}

func (c *ReportCache) Purge(_ context.Context) {
	if c == nil || c.lru == nil {
		return
	}
	c.generation.Add(1)
	c.lru.Purge()
}
