// Package tour merges pagination, sorting, keyword search, and the pet
// filter into one listing pipeline over the upstream client.
package tour

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jihaego327-source/oz1210/internal/pet"
	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

const (
	defaultRows = 20
	// Per-source fetch size whenever results are post-processed
	// client-side (multi-source merge or pet filtering). Pet filtering
	// in particular wants a large pre-filter page: the per-item pet
	// lookup is expensive and most listings carry no pet data at all.
	mergeRows = 100

	// When the pet filter is on without a keyword, bias the upstream
	// search toward pet-related results.
	implicitPetKeyword = "반려동물"

	// Multi-source fan-out is throttled to respect upstream rate limits.
	defaultBatchSize  = 3
	defaultBatchDelay = 500 * time.Millisecond

	petLookupConcurrency = 5
)

// Upstream is the subset of the tourapi client the service depends on.
type Upstream interface {
	ListRegions(ctx context.Context, parent string) ([]tourapi.Region, error)
	ListByRegion(ctx context.Context, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error)
	SearchKeyword(ctx context.Context, keyword string, q tourapi.ListQuery) (*tourapi.Page[tourapi.Attraction], error)
	GetDetail(ctx context.Context, contentID string) (*tourapi.Detail, error)
	GetIntro(ctx context.Context, contentID, contentTypeID string) (tourapi.Intro, error)
	GetImages(ctx context.Context, contentID string, rows, page int) (*tourapi.Page[tourapi.ImageInfo], error)
	GetPetInfo(ctx context.Context, contentID string) (*tourapi.PetInfo, error)
}

// Query is the URL-derived listing filter state.
type Query struct {
	Area         string
	ContentTypes []string
	Sort         string // "title" or "modified"
	Page         int
	Keyword      string
	Pet          pet.Filter
}

// Item is one listing row enriched with a converted coordinate (absent
// when the fixed-point pair is missing or outside the Korean bounding
// box) and, under the pet filter, the resolved pet record.
type Item struct {
	tourapi.Attraction
	Coordinate *tourapi.Coordinate `json:"coordinate,omitempty"`
	Pet        *tourapi.PetInfo    `json:"petInfo,omitempty"`
}

// Service orchestrates listing, search, merging, and filtering.
type Service struct {
	client Upstream
	log    *slog.Logger
	coll   *collate.Collator

	batchSize  int
	batchDelay time.Duration
}

// NewService constructs a Service with production fan-out throttling.
func NewService(client Upstream, log *slog.Logger) *Service {
	return NewServiceWithTiming(client, log, defaultBatchSize, defaultBatchDelay)
}

// NewServiceWithTiming constructs a Service with custom batching (for tests).
func NewServiceWithTiming(client Upstream, log *slog.Logger, batchSize int, batchDelay time.Duration) *Service {
	return &Service{
		client:     client,
		log:        log,
		coll:       collate.New(language.Korean),
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// List resolves a filter state into one page of items.
//
// With a single region and content type and no pet filter, upstream
// pagination is used directly. Otherwise (all-regions, multiple
// categories, or pet filtering) there is no matching upstream query:
// every source is fetched, the results are merged, re-sorted, filtered,
// and the requested window is sliced out of the merged set.
func (s *Service) List(ctx context.Context, q Query) (*tourapi.Page[Item], error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	sortKey := normalizeSort(q.Sort)

	keyword := q.Keyword
	if q.Pet.Enabled && keyword == "" {
		keyword = implicitPetKeyword
	}

	areas := []string{q.Area}
	if q.Area == "" {
		regions, err := s.client.ListRegions(ctx, "")
		if err != nil {
			return nil, err
		}
		areas = make([]string, 0, len(regions))
		for _, r := range regions {
			areas = append(areas, r.Code)
		}
	}

	types := q.ContentTypes
	if len(types) == 0 {
		types = []string{""}
	}

	if len(areas) == 1 && len(types) == 1 && !q.Pet.Enabled {
		upstream, err := s.fetchOne(ctx, keyword, areas[0], types[0], defaultRows, page, sortKey)
		if err != nil {
			return nil, err
		}
		return &tourapi.Page[Item]{Items: toItems(upstream.Items), Pagination: upstream.Pagination}, nil
	}

	merged, err := s.fetchMerged(ctx, keyword, areas, types, sortKey)
	if err != nil {
		return nil, err
	}
	s.sortAttractions(merged, sortKey)

	items := toItems(merged)
	if q.Pet.Enabled {
		items = s.filterByPet(ctx, items, q.Pet)
	}

	return paginate(items, page, defaultRows), nil
}

// fetchOne delegates to keyword search when a keyword is present,
// otherwise to region-based listing.
func (s *Service) fetchOne(ctx context.Context, keyword, area, contentType string, rows, page int, sortKey string) (*tourapi.Page[tourapi.Attraction], error) {
	lq := tourapi.ListQuery{Area: area, ContentType: contentType, Rows: rows, Page: page, Sort: sortKey}
	if keyword != "" {
		return s.client.SearchKeyword(ctx, keyword, lq)
	}
	return s.client.ListByRegion(ctx, lq)
}

// fetchMerged fetches every (area, content type) source in throttled
// batches and concatenates the results. Individual source failures
// degrade to an empty contribution.
func (s *Service) fetchMerged(ctx context.Context, keyword string, areas, types []string, sortKey string) ([]tourapi.Attraction, error) {
	type source struct{ area, contentType string }
	sources := make([]source, 0, len(areas)*len(types))
	for _, a := range areas {
		for _, ct := range types {
			sources = append(sources, source{area: a, contentType: ct})
		}
	}

	results := make([][]tourapi.Attraction, len(sources))
	for start := 0; start < len(sources); start += s.batchSize {
		end := start + s.batchSize
		if end > len(sources) {
			end = len(sources)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			src := sources[i]
			g.Go(func() error {
				upstream, err := s.fetchOne(gCtx, keyword, src.area, src.contentType, mergeRows, 1, sortKey)
				if err != nil {
					s.log.Warn("listing fetch failed", "area", src.area, "contentType", src.contentType, "err", err)
					return nil
				}
				results[i] = upstream.Items
				return nil
			})
		}
		_ = g.Wait()

		if end < len(sources) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
	}

	var merged []tourapi.Attraction
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// filterByPet resolves pet info for every item and keeps the ones that
// pass the filter. Resolution failures degrade to no data, which the
// heuristic treats as not allowed.
func (s *Service) filterByPet(ctx context.Context, items []Item, f pet.Filter) []Item {
	infos := make([]*tourapi.PetInfo, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(petLookupConcurrency)
	for i := range items {
		i := i
		g.Go(func() error {
			infos[i] = s.resolvePetInfo(gCtx, items[i].Attraction)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Item, 0, len(items))
	for i, it := range items {
		info := infos[i]
		merged := pet.MergeText(info.Texts()...)
		if !f.Match(merged, sizeText(info)) {
			continue
		}
		it.Pet = info
		out = append(out, it)
	}
	return out
}

func sizeText(info *tourapi.PetInfo) string {
	if info == nil {
		return ""
	}
	return info.AcmpyPsblCpam
}

func toItems(attractions []tourapi.Attraction) []Item {
	items := make([]Item, 0, len(attractions))
	for _, a := range attractions {
		it := Item{Attraction: a}
		if c, ok := a.Coordinate(); ok {
			coord := c
			it.Coordinate = &coord
		}
		items = append(items, it)
	}
	return items
}

func normalizeSort(sort string) string {
	if sort == "title" {
		return "title"
	}
	return "modified"
}

// paginate slices the requested window out of the full item set and
// recomputes pagination from the set's size, not any upstream total.
func paginate(items []Item, page, rows int) *tourapi.Page[Item] {
	total := len(items)
	start := (page - 1) * rows
	if start > total {
		start = total
	}
	end := start + rows
	if end > total {
		end = total
	}
	return &tourapi.Page[Item]{
		Items:      items[start:end],
		Pagination: tourapi.NewPagination(page, rows, total),
	}
}
