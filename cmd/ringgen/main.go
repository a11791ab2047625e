// Command ringgen prints a circle ring, or the boundary polygon with the
// circle cut out of it, as JSON or GeoJSON.
//
//	ringgen -lat 51.5 -lon -0.12 -radius 250 -points 32 -format geojson
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/core/usecases"
	"github.com/samirrijal/circlehole/internal/pkg/config"
	"github.com/samirrijal/circlehole/internal/pkg/geojson"
	"github.com/samirrijal/circlehole/internal/pkg/geospatial"
	"github.com/samirrijal/circlehole/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("circlehole-ringgen")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the geometry; logs go to stderr.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))

	if err := run(context.Background(), os.Args[1:], cfg.Circle, os.Stdout); err != nil {
		slog.Error("ringgen failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, defaults config.CircleConfig, out io.Writer) error {
	fs := flag.NewFlagSet("ringgen", flag.ContinueOnError)
	lat := fs.Float64("lat", defaults.CenterLat, "center latitude in degrees")
	lon := fs.Float64("lon", defaults.CenterLon, "center longitude in degrees")
	radius := fs.Float64("radius", defaults.Radius, "radius in meters")
	points := fs.Float64("points", float64(defaults.Points), "number of ring points (fractions are truncated)")
	shape := fs.String("shape", "polygon", "ring | polygon")
	format := fs.String("format", "geojson", "json | geojson")
	normalize := fs.Bool("normalize", false, "wrap ring longitudes into [-180, 180)")
	enforce := fs.Bool("opposite-winding", defaults.EnforceOppositeWinding, "reverse the hole when it winds like the boundary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := geospatial.PointCountFromProgress(*points)
	if err != nil {
		return err
	}
	spec := domain.CircleSpec{Center: domain.GeoPoint{Lat: *lat, Lon: *lon}, Radius: *radius, Points: n}
	svc := usecases.NewPolygonService(nil, nil, usecases.PolygonOptions{EnforceOppositeWinding: *enforce})

	var data []byte
	switch *shape {
	case "ring":
		ring, err := svc.Ring(ctx, spec)
		if err != nil {
			return err
		}
		if *normalize {
			ring = geospatial.NormalizeRing(ring)
		}
		data, err = encodeRing(ring, spec, *format)
		if err != nil {
			return err
		}
	case "polygon":
		p, err := svc.CircleHole(ctx, spec)
		if err != nil {
			return err
		}
		if *normalize {
			p.Hole = geospatial.NormalizeRing(p.Hole)
			// Wrapping a hole that crosses the antimeridian changes its planar winding.
			p.HoleWinding = geospatial.Orientation(p.Hole)
		}
		data, err = encodePolygon(p, *format)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown shape %q", *shape)
	}

	slog.Debug("generated", "shape", *shape, "points", n, "bytes", len(data))
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func encodeRing(r domain.Ring, spec domain.CircleSpec, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(r, "", "  ")
	case "geojson":
		return geojson.EncodeRing(r, spec)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func encodePolygon(p *domain.PolygonWithHole, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(p, "", "  ")
	case "geojson":
		return geojson.EncodePolygon(p)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
