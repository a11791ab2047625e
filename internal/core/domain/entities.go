package domain

import (
	"time"
)

// DefaultRadiusMeters is the hole radius used when a caller does not give one.
const DefaultRadiusMeters = 50.0

// CircleSpec describes the circle to approximate.
type CircleSpec struct {
	Center GeoPoint `json:"center"`
	Radius float64  `json:"radius"` // meters
	Points int      `json:"points"`
}

// PolygonWithHole is a near-global outer ring with one circular hole cut out.
type PolygonWithHole struct {
	Outer        Ring       `json:"outer"`
	Hole         Ring       `json:"hole"`
	Spec         CircleSpec `json:"spec"`
	OuterWinding Winding    `json:"outer_winding"`
	HoleWinding  Winding    `json:"hole_winding"`
}

// RingGeneratedEvent is published after a polygon has been assembled.
type RingGeneratedEvent struct {
	Spec        CircleSpec `json:"spec"`
	HoleWinding Winding    `json:"hole_winding"`
	Cached      bool       `json:"cached"`
	GeneratedAt time.Time  `json:"generated_at"`
}
