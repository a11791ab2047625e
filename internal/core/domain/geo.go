package domain

import "fmt"

// GeoPoint represents a geographic coordinate in degrees (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ring is an ordered, implicitly closed sequence of coordinates forming one
// boundary of a polygon. The closing edge joins the last point to the first.
type Ring []GeoPoint

// Winding is the direction in which a ring's vertices are listed, measured in
// the planar frame x = lon, y = lat.
type Winding int

const (
	Degenerate Winding = iota
	Clockwise
	CounterClockwise
)

func (w Winding) String() string {
	switch w {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter_clockwise"
	default:
		return "degenerate"
	}
}

// MarshalText encodes the winding by name.
func (w Winding) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText decodes a winding name produced by MarshalText.
func (w *Winding) UnmarshalText(b []byte) error {
	switch string(b) {
	case "clockwise":
		*w = Clockwise
	case "counter_clockwise":
		*w = CounterClockwise
	case "degenerate":
		*w = Degenerate
	default:
		return fmt.Errorf("unknown winding %q", string(b))
	}
	return nil
}

// Opposite returns the reverse direction. Degenerate stays degenerate.
func (w Winding) Opposite() Winding {
	switch w {
	case Clockwise:
		return CounterClockwise
	case CounterClockwise:
		return Clockwise
	default:
		return Degenerate
	}
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}
