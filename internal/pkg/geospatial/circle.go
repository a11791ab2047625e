package geospatial

import (
	"fmt"
	"math"
	"slices"

	"github.com/samirrijal/circlehole/internal/core/domain"
)

// Below this |cos(lat)| the center is treated as a pole and the longitude
// term is evaluated with cos(lat) cancelled out of both atan2 arguments.
const poleEpsilon = 1e-12

// GenerateRing approximates a circle of radius meters around center with
// pointCount vertices on a sphere of radius EarthRadiusMeters.
//
// Vertices are computed at bearings 0, 360/n, 2*360/n, ... (clockwise in the
// lon/lat plane) and returned in reverse order, so the ring winds
// counter-clockwise. Longitudes are not wrapped; points past the antimeridian
// may fall slightly outside [-180, 180]. A zero radius gives pointCount
// copies of the center.
func GenerateRing(center domain.GeoPoint, radius float64, pointCount int) (domain.Ring, error) {
	if err := ValidateCircle(center, radius, pointCount); err != nil {
		return nil, err
	}

	ring := sweep(center, radius, pointCount)
	slices.Reverse(ring)
	return ring, nil
}

// GenerateRingFromProgress is GenerateRing for a continuous control value:
// progress is truncated toward zero before use.
func GenerateRingFromProgress(center domain.GeoPoint, radius, progress float64) (domain.Ring, error) {
	n, err := PointCountFromProgress(progress)
	if err != nil {
		return nil, err
	}
	return GenerateRing(center, radius, n)
}

// PointCountFromProgress truncates a slider value to a point count.
func PointCountFromProgress(progress float64) (int, error) {
	if math.IsNaN(progress) || math.IsInf(progress, 0) {
		return 0, fmt.Errorf("%w: point count must be finite, got %v", domain.ErrInvalidArgument, progress)
	}
	if progress >= math.MaxInt32 || progress <= math.MinInt32 {
		return 0, fmt.Errorf("%w: point count %v out of range", domain.ErrInvalidArgument, progress)
	}
	return int(math.Trunc(progress)), nil
}

// Destination solves the direct problem on the sphere: the point reached by
// travelling distance meters from start along the given initial bearing.
func Destination(start domain.GeoPoint, bearing, distance float64) domain.GeoPoint {
	return destination(toRad(start.Lat), toRad(start.Lon), distance/EarthRadiusMeters, toRad(bearing))
}

// sweep returns the ring in increasing-bearing order.
func sweep(center domain.GeoPoint, radius float64, pointCount int) domain.Ring {
	lat := toRad(center.Lat)
	lon := toRad(center.Lon)
	dist := radius / EarthRadiusMeters
	step := 360.0 / float64(pointCount)

	ring := make(domain.Ring, pointCount)
	for i := range ring {
		ring[i] = destination(lat, lon, dist, toRad(float64(i)*step))
	}
	return ring
}

func destination(lat, lon, dist, bearing float64) domain.GeoPoint {
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinDist, cosDist := math.Sin(dist), math.Cos(dist)

	pLat := math.Asin(clampUnit(sinLat*cosDist + cosLat*sinDist*math.Cos(bearing)))

	var dLon float64
	if math.Abs(cosLat) < poleEpsilon {
		dLon = math.Atan2(math.Sin(bearing)*sinDist, cosLat*cosDist-sinLat*sinDist*math.Cos(bearing))
	} else {
		dLon = math.Atan2(math.Sin(bearing)*sinDist*cosLat, cosDist-sinLat*math.Sin(pLat))
	}

	return domain.GeoPoint{Lat: toDeg(pLat), Lon: toDeg(lon + dLon)}
}

// clampUnit keeps asin's argument in its domain when rounding pushes
// sin(lat+dist) a few ulps past ±1.
func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// ValidateCircle reports an error wrapping domain.ErrInvalidArgument when
// GenerateRing would reject the arguments.
func ValidateCircle(center domain.GeoPoint, radius float64, pointCount int) error {
	if pointCount <= 0 {
		return fmt.Errorf("%w: point count must be positive, got %d", domain.ErrInvalidArgument, pointCount)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: radius must be finite, got %v", domain.ErrInvalidArgument, radius)
	}
	if radius < 0 {
		return fmt.Errorf("%w: radius must not be negative, got %v", domain.ErrInvalidArgument, radius)
	}
	if !finite(center.Lat) || !finite(center.Lon) {
		return fmt.Errorf("%w: center must be finite, got (%v, %v)", domain.ErrInvalidArgument, center.Lat, center.Lon)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
