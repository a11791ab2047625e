package geospatial

import (
	"math"
	"slices"

	"github.com/samirrijal/circlehole/internal/core/domain"
)

// SignedArea returns the shoelace area of the ring in square degrees, with
// x = lon and y = lat. Positive means counter-clockwise.
func SignedArea(r domain.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	// Offsets from the first vertex keep precision for small rings far from (0,0).
	x0, y0 := r[0].Lon, r[0].Lat
	var sum float64
	for i := range r {
		a := r[i]
		b := r[(i+1)%len(r)]
		sum += (a.Lon-x0)*(b.Lat-y0) - (b.Lon-x0)*(a.Lat-y0)
	}
	return sum / 2
}

// Orientation reports the winding of the ring.
func Orientation(r domain.Ring) domain.Winding {
	area := SignedArea(r)
	switch {
	case area > 0:
		return domain.CounterClockwise
	case area < 0:
		return domain.Clockwise
	default:
		return domain.Degenerate
	}
}

// Reverse returns a reversed copy of the ring.
func Reverse(r domain.Ring) domain.Ring {
	out := slices.Clone(r)
	slices.Reverse(out)
	return out
}

// Closed returns the ring with its first point repeated at the end, unless it
// already ends where it starts.
func Closed(r domain.Ring) domain.Ring {
	if len(r) == 0 {
		return domain.Ring{}
	}
	out := slices.Clone(r)
	if out[0] != out[len(out)-1] || len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}

// NormalizeLon wraps a longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

// NormalizeRing returns a copy of the ring with every longitude wrapped into
// [-180, 180). Wrapping can break planar continuity across the antimeridian.
func NormalizeRing(r domain.Ring) domain.Ring {
	out := make(domain.Ring, len(r))
	for i, p := range r {
		out[i] = domain.GeoPoint{Lat: p.Lat, Lon: NormalizeLon(p.Lon)}
	}
	return out
}
