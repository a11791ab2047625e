package geospatial

import "github.com/samirrijal/circlehole/internal/core/domain"

const (
	boundaryMaxLat = 85.0
	boundaryInset  = 0.01
)

// OuterBoundary returns the near-global outer ring, inset from ±85° latitude
// and ±180° longitude so renderers do not clip it at the extremes:
//
//	+-------------+
//	|1     8     7|
//	|             |
//	|2   (0,0)   6|
//	|             |
//	|3     4     5|
//	+-------------+
//
// The ninth point repeats the first. The ring winds counter-clockwise.
func OuterBoundary() domain.Ring {
	top := boundaryMaxLat - boundaryInset
	bottom := -boundaryMaxLat + boundaryInset
	west := -180 + boundaryInset
	east := 180 - boundaryInset

	return domain.Ring{
		{Lat: top, Lon: west},
		{Lat: 0, Lon: west},
		{Lat: bottom, Lon: west},
		{Lat: bottom, Lon: 0},
		{Lat: bottom, Lon: east},
		{Lat: 0, Lon: east},
		{Lat: top, Lon: east},
		{Lat: top, Lon: 0},
		{Lat: top, Lon: west},
	}
}
