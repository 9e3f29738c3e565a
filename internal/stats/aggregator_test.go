package stats_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihaego327-source/oz1210/internal/stats"
	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

// ---- mocks ----

type mockUpstream struct {
	listRegionsFn  func(ctx context.Context, parent string) ([]tourapi.Region, error)
	listByRegionFn func(ctx context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error)
}

func (m *mockUpstream) ListRegions(ctx context.Context, parent string) ([]tourapi.Region, error) {
	return m.listRegionsFn(ctx, parent)
}

func (m *mockUpstream) ListByRegion(ctx context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
	return m.listByRegionFn(ctx, q)
}

// mockCache is a pass-through cache unless primed.
type mockCache struct {
	regionStats []stats.RegionStat
	typeStats   []stats.TypeStat
	summary     *stats.Summary

	setRegionStats [][]stats.RegionStat
	setTypeStats   [][]stats.TypeStat
	setSummaries   []*stats.Summary
}

func (m *mockCache) GetRegionStats(_ context.Context) ([]stats.RegionStat, error) {
	return m.regionStats, nil
}
func (m *mockCache) SetRegionStats(_ context.Context, s []stats.RegionStat) error {
	m.setRegionStats = append(m.setRegionStats, s)
	return nil
}
func (m *mockCache) GetTypeStats(_ context.Context) ([]stats.TypeStat, error) {
	return m.typeStats, nil
}
func (m *mockCache) SetTypeStats(_ context.Context, s []stats.TypeStat) error {
	m.setTypeStats = append(m.setTypeStats, s)
	return nil
}
func (m *mockCache) GetSummary(_ context.Context) (*stats.Summary, error) {
	return m.summary, nil
}
func (m *mockCache) SetSummary(_ context.Context, s *stats.Summary) error {
	m.setSummaries = append(m.setSummaries, s)
	return nil
}

func newAggregator(m *mockUpstream, c *mockCache) *stats.Aggregator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return stats.NewAggregatorWithTiming(m, c, log, 3, 0)
}

func regions(codes ...string) []tourapi.Region {
	out := make([]tourapi.Region, len(codes))
	for i, c := range codes {
		out[i] = tourapi.Region{Code: c, Name: "지역" + c}
	}
	return out
}

// countPage returns a minimal page whose only useful field is TotalCount.
func countPage(total int) *tourapi.Page[tourapi.Attraction] {
	return &tourapi.Page[tourapi.Attraction]{Pagination: tourapi.NewPagination(1, 1, total)}
}

// fixedCounts builds an upstream where every (region, type) count query
// returns perQuery.
func fixedCounts(regionCodes []string, perQuery int) *mockUpstream {
	return &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			return regions(regionCodes...), nil
		},
		listByRegionFn: func(_ context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
			return countPage(perQuery), nil
		},
	}
}

// ---- RegionStats ----

func TestRegionStats_CountsAndPercentages(t *testing.T) {
	// Per-region totals: region "1" → 5 per type, region "6" → 15 per type.
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			return regions("1", "6"), nil
		},
		listByRegionFn: func(_ context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
			assert.Equal(t, 1, q.Rows, "count queries use a minimal page size")
			if q.Area == "1" {
				return countPage(5), nil
			}
			return countPage(15), nil
		},
	}

	got, err := newAggregator(m, &mockCache{}).RegionStats(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	nTypes := len(tourapi.ContentTypes)
	assert.Equal(t, "6", got[0].Code, "sorted descending by count")
	assert.Equal(t, 15*nTypes, got[0].Count)
	assert.Equal(t, 5*nTypes, got[1].Count)
	assert.InDelta(t, 75.0, got[0].Percentage, 0.1)
	assert.InDelta(t, 25.0, got[1].Percentage, 0.1)
}

func TestRegionStats_PercentagesSumTo100(t *testing.T) {
	counts := map[string]int{"1": 7, "6": 13, "39": 29}
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			return regions("1", "6", "39"), nil
		},
		listByRegionFn: func(_ context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
			return countPage(counts[q.Area]), nil
		},
	}

	got, err := newAggregator(m, &mockCache{}).RegionStats(context.Background())
	require.NoError(t, err)

	sum := 0.0
	for _, s := range got {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.5)
}

func TestRegionStats_ZeroTotalMeansZeroPercentages(t *testing.T) {
	m := fixedCounts([]string{"1", "6"}, 0)
	got, err := newAggregator(m, &mockCache{}).RegionStats(context.Background())
	require.NoError(t, err)
	for _, s := range got {
		assert.Zero(t, s.Percentage)
	}
}

func TestRegionStats_FailedCountDegradesToZero(t *testing.T) {
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			return regions("1", "6"), nil
		},
		listByRegionFn: func(_ context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
			if q.Area == "1" {
				return nil, &tourapi.Error{Category: tourapi.CategoryUpstream, StatusCode: 500}
			}
			return countPage(10), nil
		},
	}

	got, err := newAggregator(m, &mockCache{}).RegionStats(context.Background())
	require.NoError(t, err, "per-category failures degrade to zero, never abort")
	require.Len(t, got, 2)
	assert.Equal(t, "6", got[0].Code)
	assert.Zero(t, got[1].Count)
}

func TestRegionStats_ServedFromCache(t *testing.T) {
	cached := []stats.RegionStat{{Code: "1", Name: "서울", Count: 42, Percentage: 100}}
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			t.Fatal("upstream must not be hit on a cache hit")
			return nil, nil
		},
	}

	got, err := newAggregator(m, &mockCache{regionStats: cached}).RegionStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

// ---- TypeStats ----

func TestTypeStats_SumsAcrossRegions(t *testing.T) {
	m := fixedCounts([]string{"1", "6", "39"}, 4)

	got, err := newAggregator(m, &mockCache{}).TypeStats(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(tourapi.ContentTypes))

	for _, s := range got {
		assert.Equal(t, 12, s.Count, "each category sums counts across every region")
	}
}

// ---- Summary ----

func TestSummary_TopThreeRanking(t *testing.T) {
	// Region counts 5, 50, 20, 5: top-3 must be 50(rank1), 20(rank2),
	// then the first 5 (rank3).
	perRegion := map[string]int{"a": 5, "b": 50, "c": 20, "d": 5}
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			return regions("a", "b", "c", "d"), nil
		},
		listByRegionFn: func(_ context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
			// Attribute the whole region count to the first category so
			// per-region totals match the scenario exactly.
			if q.ContentType == tourapi.ContentTypes[0].ID {
				return countPage(perRegion[q.Area]), nil
			}
			return countPage(0), nil
		},
	}

	summary, err := newAggregator(m, &mockCache{}).Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.TopRegions, 3)
	assert.Equal(t, 50, summary.TopRegions[0].Count)
	assert.Equal(t, 1, summary.TopRegions[0].Rank)
	assert.Equal(t, 20, summary.TopRegions[1].Count)
	assert.Equal(t, 2, summary.TopRegions[1].Rank)
	assert.Equal(t, 5, summary.TopRegions[2].Count)
	assert.Equal(t, 3, summary.TopRegions[2].Rank)
	assert.Equal(t, "a", summary.TopRegions[2].Code, "ties keep first-occurrence order")

	assert.Equal(t, 80, summary.TotalCount)
	assert.False(t, summary.ComputedAt.IsZero())
}

func TestSummary_AxisFailureDegrades(t *testing.T) {
	calls := 0
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			// First axis (regions) fails outright; second succeeds.
			calls++
			if calls == 1 {
				return nil, &tourapi.Error{Category: tourapi.CategoryNetwork}
			}
			return regions("1"), nil
		},
		listByRegionFn: func(_ context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error) {
			return countPage(3), nil
		},
	}

	summary, err := newAggregator(m, &mockCache{}).Summary(context.Background())
	require.NoError(t, err, "a wholly failed axis degrades to empty, never aborts the summary")
	assert.Empty(t, summary.TopRegions)
	assert.NotEmpty(t, summary.TopTypes)
	assert.Equal(t, 3*len(tourapi.ContentTypes), summary.TotalCount)
}

func TestSummary_ServedFromCache(t *testing.T) {
	cached := &stats.Summary{TotalCount: 7, ComputedAt: time.Now()}
	m := &mockUpstream{
		listRegionsFn: func(_ context.Context, _ string) ([]tourapi.Region, error) {
			t.Fatal("upstream must not be hit on a cache hit")
			return nil, nil
		},
	}

	got, err := newAggregator(m, &mockCache{summary: cached}).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached.TotalCount, got.TotalCount)
}

func TestSummary_CachesResult(t *testing.T) {
	m := fixedCounts([]string{"1"}, 2)
	c := &mockCache{}

	_, err := newAggregator(m, c).Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.setSummaries, 1)
	assert.Len(t, c.setRegionStats, 1)
	assert.Len(t, c.setTypeStats, 1)
}
