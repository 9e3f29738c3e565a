// Package stats computes region- and category-level listing counts over
// the upstream API, which only exposes per-region-per-category count
// queries. A full recompute costs O(regions × categories) upstream
// calls, so results are served from a 1-hour cache.
package stats

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

const (
	topN = 3

	defaultBatchSize  = 3
	defaultBatchDelay = 500 * time.Millisecond
)

// RegionStat is a per-region listing count with its share of the grand
// total. Rank is populated only on top-N summary entries.
type RegionStat struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Rank       int     `json:"rank,omitempty"`
}

// TypeStat is the category-axis counterpart of RegionStat.
type TypeStat struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Rank       int     `json:"rank,omitempty"`
}

// Summary combines the top entries of both axes with the grand total.
type Summary struct {
	TopRegions []RegionStat `json:"topRegions"`
	TopTypes   []TypeStat   `json:"topTypes"`
	TotalCount int          `json:"totalCount"`
	ComputedAt time.Time    `json:"computedAt"`
}

// Upstream is the subset of the tourapi client the aggregator uses.
type Upstream interface {
	ListRegions(ctx context.Context, parent string) ([]tourapi.Region, error)
	ListByRegion(ctx context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error)
}

// Cache stores computed aggregates per axis. A miss is nil, nil.
type Cache interface {
	GetRegionStats(ctx context.Context) ([]RegionStat, error)
	SetRegionStats(ctx context.Context, stats []RegionStat) error
	GetTypeStats(ctx context.Context) ([]TypeStat, error)
	SetTypeStats(ctx context.Context, stats []TypeStat) error
	GetSummary(ctx context.Context) (*Summary, error)
	SetSummary(ctx context.Context, s *Summary) error
}

// Aggregator fans count queries out across regions and categories and
// rolls the results up into ranked aggregates.
type Aggregator struct {
	client Upstream
	cache  Cache
	log    *slog.Logger

	batchSize  int
	batchDelay time.Duration
	now        func() time.Time
}

// NewAggregator constructs an Aggregator with production throttling.
func NewAggregator(client Upstream, cache Cache, log *slog.Logger) *Aggregator {
	return NewAggregatorWithTiming(client, cache, log, defaultBatchSize, defaultBatchDelay)
}

// NewAggregatorWithTiming constructs an Aggregator with custom batching (for tests).
func NewAggregatorWithTiming(client Upstream, cache Cache, log *slog.Logger, batchSize int, batchDelay time.Duration) *Aggregator {
	return &Aggregator{
		client:     client,
		cache:      cache,
		log:        log,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		now:        time.Now,
	}
}

// countFor issues a minimal-page-size query and reads its total count.
func (a *Aggregator) countFor(ctx context.Context, area, contentType string) (int, error) {
	page, err := a.client.ListByRegion(ctx, tourapi.ListQuery{
		Area:        area,
		ContentType: contentType,
		Rows:        1,
		Page:        1,
	})
	if err != nil {
		return 0, err
	}
	return page.Pagination.TotalCount, nil
}

// regionCount sums the per-category counts for one region. Individual
// category failures degrade to zero with a warning.
func (a *Aggregator) regionCount(ctx context.Context, area string) int {
	counts := make([]int, len(tourapi.ContentTypes))

	g, gCtx := errgroup.WithContext(ctx)
	for i, ct := range tourapi.ContentTypes {
		i, ct := i, ct
		g.Go(func() error {
			n, err := a.countFor(gCtx, area, ct.ID)
			if err != nil {
				a.log.Warn("count query failed", "area", area, "contentType", ct.ID, "err", err)
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// RegionStats computes one count per region, serving from cache when
// fresh. Regions are processed in throttled batches; the per-category
// queries inside one region run in parallel.
func (a *Aggregator) RegionStats(ctx context.Context) ([]RegionStat, error) {
	if cached, err := a.cache.GetRegionStats(ctx); err != nil {
		a.log.Error("region stats cache get failed", "err", err)
	} else if cached != nil {
		return cached, nil
	}

	regions, err := a.client.ListRegions(ctx, "")
	if err != nil {
		return nil, err
	}

	stats := make([]RegionStat, len(regions))
	for start := 0; start < len(regions); start += a.batchSize {
		end := start + a.batchSize
		if end > len(regions) {
			end = len(regions)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			r := regions[i]
			g.Go(func() error {
				stats[i] = RegionStat{Code: r.Code, Name: r.Name, Count: a.regionCount(gCtx, r.Code)}
				return nil
			})
		}
		_ = g.Wait()

		if end < len(regions) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.batchDelay):
			}
		}
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	for i := range stats {
		stats[i].Percentage = percentage(stats[i].Count, total)
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })

	if err := a.cache.SetRegionStats(ctx, stats); err != nil {
		a.log.Warn("region stats cache set failed", "err", err)
	}
	return stats, nil
}

// TypeStats computes one count per category, summed across every
// region. Symmetric to RegionStats.
func (a *Aggregator) TypeStats(ctx context.Context) ([]TypeStat, error) {
	if cached, err := a.cache.GetTypeStats(ctx); err != nil {
		a.log.Error("type stats cache get failed", "err", err)
	} else if cached != nil {
		return cached, nil
	}

	regions, err := a.client.ListRegions(ctx, "")
	if err != nil {
		return nil, err
	}

	// Each goroutine writes only its own region's row; the rows are
	// summed per category after the fan-out completes.
	rows := make([][]int, len(regions))
	for start := 0; start < len(regions); start += a.batchSize {
		end := start + a.batchSize
		if end > len(regions) {
			end = len(regions)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			r := regions[i]
			g.Go(func() error {
				row := make([]int, len(tourapi.ContentTypes))
				for ti, ct := range tourapi.ContentTypes {
					n, err := a.countFor(gCtx, r.Code, ct.ID)
					if err != nil {
						a.log.Warn("count query failed", "area", r.Code, "contentType", ct.ID, "err", err)
						continue
					}
					row[ti] = n
				}
				rows[i] = row
				return nil
			})
		}
		_ = g.Wait()

		if end < len(regions) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.batchDelay):
			}
		}
	}

	counts := make([]int, len(tourapi.ContentTypes))
	for _, row := range rows {
		for ti, n := range row {
			counts[ti] += n
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	stats := make([]TypeStat, len(tourapi.ContentTypes))
	for i, ct := range tourapi.ContentTypes {
		stats[i] = TypeStat{Code: ct.ID, Name: ct.Name, Count: counts[i], Percentage: percentage(counts[i], total)}
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })

	if err := a.cache.SetTypeStats(ctx, stats); err != nil {
		a.log.Warn("type stats cache set failed", "err", err)
	}
	return stats, nil
}

// Summary rolls both axes up into a top-3 view. This is a best-effort
// aggregate: an axis that fails entirely contributes an empty list
// instead of aborting the summary.
func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	if cached, err := a.cache.GetSummary(ctx); err != nil {
		a.log.Error("summary cache get failed", "err", err)
	} else if cached != nil {
		return cached, nil
	}

	regionStats, err := a.RegionStats(ctx)
	if err != nil {
		a.log.Warn("region axis failed, summary degrades", "err", err)
		regionStats = nil
	}
	typeStats, err := a.TypeStats(ctx)
	if err != nil {
		a.log.Warn("type axis failed, summary degrades", "err", err)
		typeStats = nil
	}

	// The grand total is the sum of per-category totals; fall back to
	// the region axis when the category axis is unavailable.
	total := 0
	for _, s := range typeStats {
		total += s.Count
	}
	if len(typeStats) == 0 {
		for _, s := range regionStats {
			total += s.Count
		}
	}

	summary := &Summary{
		TopRegions: topRegions(regionStats),
		TopTypes:   topTypes(typeStats),
		TotalCount: total,
		ComputedAt: a.now(),
	}

	if err := a.cache.SetSummary(ctx, summary); err != nil {
		a.log.Warn("summary cache set failed", "err", err)
	}
	return summary, nil
}

// topRegions takes the leading entries of an already-sorted axis and
// attaches 1-based ranks. Ties keep first-occurrence order.
func topRegions(stats []RegionStat) []RegionStat {
	n := topN
	if len(stats) < n {
		n = len(stats)
	}
	top := make([]RegionStat, n)
	copy(top, stats[:n])
	for i := range top {
		top[i].Rank = i + 1
	}
	return top
}

func topTypes(stats []TypeStat) []TypeStat {
	n := topN
	if len(stats) < n {
		n = len(stats)
	}
	top := make([]TypeStat, n)
	copy(top, stats[:n])
	for i := range top {
		top[i].Rank = i + 1
	}
	return top
}

// percentage is count/total*100 rounded to one decimal; 0 when total is 0.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
