package aggregator

import (
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/observability"
)

// Cache memoizes pipeline outputs per family, query, and limit. Storage is an
// expirable LRU with a short TTL; a singleflight group collapses concurrent
// identical requests into one upstream fetch.
//
// This is the only shared mutable state in the service. A nil *Cache is a
// valid "caching disabled" value to the facade.
type Cache struct {
	research *expirable.LRU[string, []domain.ResearchResult]
	expert   *expirable.LRU[string, []domain.ExpertContent]
	group    singleflight.Group
	metrics  *observability.Metrics
}

// NewCache creates a cache holding up to size entries per family, each
// expiring after ttl. metrics may be nil.
func NewCache(size int, ttl time.Duration, metrics *observability.Metrics) *Cache {
	return &Cache{
		research: expirable.NewLRU[string, []domain.ResearchResult](size, nil, ttl),
		expert:   expirable.NewLRU[string, []domain.ExpertContent](size, nil, ttl),
		metrics:  metrics,
	}
}

// Research returns the memoized research pipeline output for (query, limit),
// invoking fetch on a miss. Concurrent callers with the same key share one
// fetch.
func (c *Cache) Research(query string, limit int, fetch func() []domain.ResearchResult) []domain.ResearchResult {
	key := cacheKey("research", query, limit)
	if cached, ok := c.research.Get(key); ok {
		c.hit("research")
		return cached
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.research.Get(key); ok {
			c.hit("research")
			return cached, nil
		}
		c.miss("research")
		results := fetch()
		c.research.Add(key, results)
		return results, nil
	})
	return v.([]domain.ResearchResult)
}

// Expert returns the memoized expert pipeline output for (query, limit),
// invoking fetch on a miss.
func (c *Cache) Expert(query string, limit int, fetch func() []domain.ExpertContent) []domain.ExpertContent {
	key := cacheKey("expert", query, limit)
	if cached, ok := c.expert.Get(key); ok {
		c.hit("expert")
		return cached
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.expert.Get(key); ok {
			c.hit("expert")
			return cached, nil
		}
		c.miss("expert")
		items := fetch()
		c.expert.Add(key, items)
		return items, nil
	})
	return v.([]domain.ExpertContent)
}

func (c *Cache) hit(family string) {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(family).Inc()
	}
}

func (c *Cache) miss(family string) {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(family).Inc()
	}
}

// cacheKey builds the memoization key: family, whitespace-collapsed
// lower-case query, and limit.
func cacheKey(family, query string, limit int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return family + "|" + normalized + "|" + strconv.Itoa(limit)
}
