package geo

import (
	"errors"
	"fmt"
	"math"
)

// The registry stores coordinates as unsigned fixed-point integers:
// degrees are shifted to be non-negative and scaled by 1e6 (~0.11 m resolution).
const (
	scale     = 1_000_000
	latOffset = 90.0
	lonOffset = 180.0
)

// ErrOutOfRange is returned when a coordinate falls outside the valid
// latitude/longitude ranges.
var ErrOutOfRange = errors.New("coordinate out of range")

// Encode converts signed degree coordinates into the registry's fixed-point
// encoding. Encoding uses floor, matching how the chain quantizes values, so
// Decode recovers the input only to the nearest 1e-6 degree.
func Encode(lat, lon float64) (latInt, lonInt uint32, err error) {
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: latitude %v not in [-90, 90]", ErrOutOfRange, lat)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: longitude %v not in [-180, 180]", ErrOutOfRange, lon)
	}

	latInt = uint32(math.Floor((lat + latOffset) * scale))
	lonInt = uint32(math.Floor((lon + lonOffset) * scale))
	return latInt, lonInt, nil
}

// Decode converts fixed-point registry coordinates back to signed degrees.
func Decode(latInt, lonInt uint32) (lat, lon float64) {
	lat = float64(latInt)/scale - latOffset
	lon = float64(lonInt)/scale - lonOffset
	return lat, lon
}
