package usgs

import (
	"context"
	"sync"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/couchcryptid/fishing-diary-etl/internal/observability"
)

// CachedService wraps a WaterService with an in-memory LRU cache keyed by
// station and date. Several diary entries often share a trip date.
type CachedService struct {
	inner   domain.WaterService
	daily   *lruCache[domain.DailyValues]
	series  *lruCache[[]domain.TimedValue]
	metrics *observability.Metrics
}

// NewCachedService creates a cache decorator around a water service.
func NewCachedService(inner domain.WaterService, maxEntries int, metrics *observability.Metrics) *CachedService {
	return &CachedService{
		inner:   inner,
		daily:   newLRUCache[domain.DailyValues](maxEntries),
		series:  newLRUCache[[]domain.TimedValue](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedService) DailyValues(ctx context.Context, stationID, date string) (domain.DailyValues, error) {
	key := stationID + "|" + date
	if v, ok := c.daily.get(key); ok {
		c.metrics.WaterCache.WithLabelValues("hit").Inc()
		return v, nil
	}
	c.metrics.WaterCache.WithLabelValues("miss").Inc()

	v, err := c.inner.DailyValues(ctx, stationID, date)
	if err != nil {
		return v, err
	}
	c.daily.put(key, v)
	return v, nil
}

func (c *CachedService) InstantaneousGageHeight(ctx context.Context, stationID, date string) ([]domain.TimedValue, error) {
	key := stationID + "|" + date
	if v, ok := c.series.get(key); ok {
		c.metrics.WaterCache.WithLabelValues("hit").Inc()
		return v, nil
	}
	c.metrics.WaterCache.WithLabelValues("miss").Inc()

	v, err := c.inner.InstantaneousGageHeight(ctx, stationID, date)
	if err != nil {
		return v, err
	}
	c.series.put(key, v)
	return v, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
