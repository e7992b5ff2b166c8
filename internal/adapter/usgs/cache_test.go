package usgs

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/couchcryptid/fishing-diary-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingService struct {
	dailyCalls  int
	seriesCalls int
	daily       domain.DailyValues
	series      []domain.TimedValue
	err         error
}

func (m *countingService) DailyValues(_ context.Context, _, _ string) (domain.DailyValues, error) {
	m.dailyCalls++
	return m.daily, m.err
}

func (m *countingService) InstantaneousGageHeight(_ context.Context, _, _ string) ([]domain.TimedValue, error) {
	m.seriesCalls++
	return m.series, m.err
}

// --- CachedService tests ---

func TestCachedService_DailyCacheHit(t *testing.T) {
	inner := &countingService{daily: domain.DailyValues{Discharge: "410", GageHeight: "3.2"}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedService(inner, 10, metrics)

	v1, err := cached.DailyValues(context.Background(), testStation, testDate)
	require.NoError(t, err)
	v2, err := cached.DailyValues(context.Background(), testStation, testDate)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.dailyCalls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.WaterCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.WaterCache.WithLabelValues("miss")), 0)
}

func TestCachedService_SeriesCacheHit(t *testing.T) {
	inner := &countingService{series: []domain.TimedValue{{DateTime: "2024-04-20T12:00", Value: "3.1"}}}
	cached := NewCachedService(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.InstantaneousGageHeight(context.Background(), testStation, testDate)
	require.NoError(t, err)
	got, err := cached.InstantaneousGageHeight(context.Background(), testStation, testDate)
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.seriesCalls)
}

func TestCachedService_DailyAndSeriesKeysIndependent(t *testing.T) {
	inner := &countingService{}
	cached := NewCachedService(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.DailyValues(context.Background(), testStation, testDate)
	_, _ = cached.InstantaneousGageHeight(context.Background(), testStation, testDate)

	assert.Equal(t, 1, inner.dailyCalls)
	assert.Equal(t, 1, inner.seriesCalls)
}

func TestCachedService_DifferentKeysMiss(t *testing.T) {
	inner := &countingService{}
	cached := NewCachedService(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.DailyValues(context.Background(), testStation, "2024-04-20")
	_, _ = cached.DailyValues(context.Background(), testStation, "2024-04-21")
	_, _ = cached.DailyValues(context.Background(), "07072000", "2024-04-20")

	assert.Equal(t, 3, inner.dailyCalls)
}

func TestCachedService_ErrorsNotCached(t *testing.T) {
	inner := &countingService{err: errors.New("upstream down")}
	cached := NewCachedService(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.DailyValues(context.Background(), testStation, testDate)
	require.Error(t, err)

	inner.err = nil
	_, err = cached.DailyValues(context.Background(), testStation, testDate)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.dailyCalls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string](3)

	c.put("a", "1")
	c.put("b", "2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "1")
	c.put("b", "2")
	c.put("c", "3")

	_, ok := c.get("a")
	assert.False(t, ok, "oldest entry should be evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "1")
	c.put("b", "2")
	c.get("a")
	c.put("c", "3")

	_, ok := c.get("a")
	assert.True(t, ok, "recently read entry should survive")
	_, ok = c.get("b")
	assert.False(t, ok)
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "1")
	c.put("a", "updated")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "updated", v)
	assert.Len(t, c.entries, 1)
}

func TestLRUCache_NonPositiveSizeHoldsOne(t *testing.T) {
	c := newLRUCache[string](0)

	c.put("a", "1")
	c.put("b", "2")

	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("b")
	assert.True(t, ok)
}
