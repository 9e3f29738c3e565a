package api

import (
	"context"

	"github.com/jihaego327-source/oz1210/internal/stats"
	"github.com/jihaego327-source/oz1210/internal/storage"
	"github.com/jihaego327-source/oz1210/internal/tour"
	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

// TourService defines the listing/detail operations needed by handlers.
type TourService interface {
	List(ctx context.Context, q tour.Query) (*tourapi.Page[tour.Item], error)
	Detail(ctx context.Context, contentID, contentTypeID string) (*tour.DetailView, error)
	Pet(ctx context.Context, contentID string) (*tour.PetSummary, error)
}

// RegionLister exposes the region taxonomy.
type RegionLister interface {
	ListRegions(ctx context.Context, parent string) ([]tourapi.Region, error)
}

// StatsProvider defines the aggregate operations needed by handlers.
type StatsProvider interface {
	RegionStats(ctx context.Context) ([]stats.RegionStat, error)
	TypeStats(ctx context.Context) ([]stats.TypeStat, error)
	Summary(ctx context.Context) (*stats.Summary, error)
}

// StatsCache is the slice of the cache the refresh handler needs.
type StatsCache interface {
	Invalidate(ctx context.Context) error
}

// BookmarkStore defines the bookmark persistence needed by handlers.
type BookmarkStore interface {
	AddBookmark(ctx context.Context, userID, contentID string) (*storage.Bookmark, error)
	ListBookmarks(ctx context.Context, userID string) ([]storage.Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, contentID string) (bool, error)
}
