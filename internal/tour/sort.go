package tour

import (
	"sort"
	"time"

	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

const modifiedTimeLayout = "20060102150405"

// sortAttractions re-sorts a merged result set client-side: titles in
// locale-aware Korean order ascending, or last-modified timestamps
// descending.
func (s *Service) sortAttractions(items []tourapi.Attraction, sortKey string) {
	switch sortKey {
	case "title":
		sort.SliceStable(items, func(i, j int) bool {
			return s.coll.CompareString(items[i].Title, items[j].Title) < 0
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return parseModified(items[i].ModifiedTime).After(parseModified(items[j].ModifiedTime))
		})
	}
}

// parseModified parses the upstream yyyymmddhhmmss timestamp; rows with
// a missing or malformed value sort last.
func parseModified(s string) time.Time {
	t, err := time.Parse(modifiedTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
