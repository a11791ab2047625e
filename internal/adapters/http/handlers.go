package http

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/pkg/config"
	"github.com/samirrijal/circlehole/internal/pkg/geojson"
	"github.com/samirrijal/circlehole/internal/pkg/geospatial"
)

// RingResponse is the JSON form of a single ring.
type RingResponse struct {
	Spec    *domain.CircleSpec `json:"spec,omitempty"`
	Winding domain.Winding     `json:"winding"`
	Bounds  domain.Bounds      `json:"bounds"`
	Points  domain.Ring        `json:"points"`
}

func newRingResponse(r domain.Ring, spec *domain.CircleSpec) RingResponse {
	return RingResponse{
		Spec:    spec,
		Winding: geospatial.Orientation(r),
		Bounds:  geospatial.RingBounds(r),
		Points:  r,
	}
}

// BoundaryHandler returns the fixed outer ring.
func BoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newRingResponse(deps.Polygons.Boundary(), nil))
	}
}

// RingHandler returns a circle ring on its own.
// Query: lat, lon, radius (m), points, normalize, format=json|geojson.
func RingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := specFromQuery(c, deps.Circle)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ring, err := deps.Polygons.Ring(c.UserContext(), spec)
		if err != nil {
			return errFrom(c, err)
		}
		if c.QueryBool("normalize", false) {
			ring = geospatial.NormalizeRing(ring)
		}

		switch c.Query("format", "json") {
		case "json":
			return c.JSON(newRingResponse(ring, &spec))
		case "geojson":
			data, err := geojson.EncodeRing(ring, spec)
			if err != nil {
				return errFrom(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.Send(data)
		default:
			return errBadRequest(c, "format must be json or geojson")
		}
	}
}

// CircleHoleHandler returns the outer boundary with a circular hole.
// Query: lat, lon, radius (m), points, format=json|geojson.
func CircleHoleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := specFromQuery(c, deps.Circle)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		p, err := deps.Polygons.CircleHole(c.UserContext(), spec)
		if err != nil {
			return errFrom(c, err)
		}

		switch c.Query("format", "json") {
		case "json":
			return c.JSON(p)
		case "geojson":
			data, err := geojson.EncodePolygon(p)
			if err != nil {
				return errFrom(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.Send(data)
		default:
			return errBadRequest(c, "format must be json or geojson")
		}
	}
}

// specFromQuery reads lat, lon, radius and points, falling back to the
// configured defaults. points may be fractional and is truncated.
func specFromQuery(c *fiber.Ctx, defaults config.CircleConfig) (domain.CircleSpec, error) {
	lat, err := queryFloat(c, "lat", defaults.CenterLat)
	if err != nil {
		return domain.CircleSpec{}, err
	}
	lon, err := queryFloat(c, "lon", defaults.CenterLon)
	if err != nil {
		return domain.CircleSpec{}, err
	}
	radius, err := queryFloat(c, "radius", defaults.Radius)
	if err != nil {
		return domain.CircleSpec{}, err
	}
	progress, err := queryFloat(c, "points", float64(defaults.Points))
	if err != nil {
		return domain.CircleSpec{}, err
	}
	n, err := geospatial.PointCountFromProgress(progress)
	if err != nil {
		return domain.CircleSpec{}, err
	}

	spec := domain.CircleSpec{Center: domain.GeoPoint{Lat: lat, Lon: lon}, Radius: radius, Points: n}
	return spec, checkSpec(spec, defaults.MaxPoints)
}

// checkSpec applies the transport limits shared by REST, GraphQL and WebSocket.
func checkSpec(spec domain.CircleSpec, maxPoints int) error {
	if spec.Center.Lat < -90 || spec.Center.Lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if spec.Center.Lon < -180 || spec.Center.Lon > 180 {
		return fmt.Errorf("lon must be between -180 and 180")
	}
	if spec.Radius < 0 {
		return fmt.Errorf("radius must not be negative")
	}
	if spec.Points < 1 || spec.Points > maxPoints {
		return fmt.Errorf("points must be between 1 and %d", maxPoints)
	}
	return nil
}

func queryFloat(c *fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return v, nil
}
