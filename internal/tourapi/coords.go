package tourapi

import "strconv"

// The upstream encodes longitude/latitude as fixed-point integers that
// must be divided by 1e7 to obtain decimal degrees.
const coordScale = 1e7

// Korean peninsula bounding box in decimal degrees. Converted pairs
// outside it are treated as not displayable, never as errors.
const (
	minLat = 33.0
	maxLat = 39.0
	minLng = 124.0
	maxLng = 132.0
)

// Coordinate is a decimal-degree pair, ready for a mapping SDK.
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// ParseCoordinate converts the upstream fixed-point pair into decimal
// degrees. ok is false when either axis is missing or unparsable.
func ParseCoordinate(mapx, mapy string) (Coordinate, bool) {
	if mapx == "" || mapy == "" {
		return Coordinate{}, false
	}
	x, err := strconv.ParseFloat(mapx, 64)
	if err != nil {
		return Coordinate{}, false
	}
	y, err := strconv.ParseFloat(mapy, 64)
	if err != nil {
		return Coordinate{}, false
	}
	return Coordinate{Lng: x / coordScale, Lat: y / coordScale}, true
}

// InKorea reports whether the coordinate falls inside the Korean
// peninsula bounding box.
func (c Coordinate) InKorea() bool {
	return c.Lat >= minLat && c.Lat <= maxLat && c.Lng >= minLng && c.Lng <= maxLng
}
