package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/pkg/geospatial"
)

// Feature is an RFC 7946 Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   geom.Geometry  `json:"geometry"`
	BBox       []float64      `json:"bbox,omitempty"`
	Properties map[string]any `json:"properties"`
}

// Polygon builds a two-ring polygon: the outer boundary followed by the hole.
// Ring order and direction are kept as given.
func Polygon(p *domain.PolygonWithHole) geom.Polygon {
	return geom.NewPolygon([]geom.LineString{
		lineString(p.Outer),
		lineString(p.Hole),
	})
}

// EncodePolygon marshals an assembled polygon as a GeoJSON Feature.
func EncodePolygon(p *domain.PolygonWithHole) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("encode polygon: nil polygon")
	}
	f := Feature{
		Type:       "Feature",
		Geometry:   Polygon(p).AsGeometry(),
		BBox:       bbox(p.Outer),
		Properties: specProperties(p.Spec),
	}
	f.Properties["outer_winding"] = p.OuterWinding.String()
	f.Properties["hole_winding"] = p.HoleWinding.String()
	return json.Marshal(f)
}

// EncodeRing marshals a single ring as a one-ring polygon Feature.
func EncodeRing(r domain.Ring, spec domain.CircleSpec) ([]byte, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("encode ring: empty ring")
	}
	f := Feature{
		Type:       "Feature",
		Geometry:   geom.NewPolygon([]geom.LineString{lineString(r)}).AsGeometry(),
		BBox:       bbox(r),
		Properties: specProperties(spec),
	}
	f.Properties["winding"] = geospatial.Orientation(r).String()
	return json.Marshal(f)
}

// lineString closes the ring and converts it to [lon, lat] order.
func lineString(r domain.Ring) geom.LineString {
	closed := geospatial.Closed(r)
	coords := make([]float64, 0, 2*len(closed))
	for _, p := range closed {
		coords = append(coords, p.Lon, p.Lat)
	}
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
}

func bbox(r domain.Ring) []float64 {
	b := geospatial.RingBounds(r)
	return []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}

func specProperties(spec domain.CircleSpec) map[string]any {
	return map[string]any{
		"center": []float64{spec.Center.Lon, spec.Center.Lat},
		"radius": spec.Radius,
		"points": spec.Points,
	}
}
