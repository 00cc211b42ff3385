package salesdash

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResultCache maps a normalized filter key to its computed dashboard.
type ResultCache interface {
	Get(key FilterKey) (*Dashboard, bool)
	// Peek looks the key up without touching recency or counters.
	Peek(key FilterKey) (*Dashboard, bool)
	Add(key FilterKey, value *Dashboard)
	Len() int
	Purge()
}

// LRUCacheConfig bounds the cache.
// Size <= 0 keeps every entry, TTL <= 0 never expires entries.
type LRUCacheConfig struct {
	Size int
	TTL  time.Duration

	// Registerer receives the cache counters, nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// LRUCache evicts the least recently used dashboard once Size entries are held.
type LRUCache struct {
	lru *expirable.LRU[string, *Dashboard]

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

func NewLRUCache(cfg LRUCacheConfig) *LRUCache {
	factory := promauto.With(cfg.Registerer)

	c := &LRUCache{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "cache_hits_total",
			Help:      "Total count of filter keys found in the result cache.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "cache_misses_total",
			Help:      "Total count of filter keys missing from the result cache.",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "cache_evictions_total",
			Help:      "Total count of dashboards evicted or expired from the result cache.",
		}),
	}

	c.lru = expirable.NewLRU[string, *Dashboard](cfg.Size, func(string, *Dashboard) {
		c.evictions.Inc()
	}, cfg.TTL)

	return c
}

func (c *LRUCache) Get(key FilterKey) (*Dashboard, bool) {
	v, ok := c.lru.Get(key.String())
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}

	return v, ok
}

func (c *LRUCache) Peek(key FilterKey) (*Dashboard, bool) {
	return c.lru.Peek(key.String())
}

func (c *LRUCache) Add(key FilterKey, value *Dashboard) {
	c.lru.Add(key.String(), value)
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}

func (c *LRUCache) Purge() {
	c.lru.Purge()
}
