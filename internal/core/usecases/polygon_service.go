package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/core/ports"
	"github.com/samirrijal/circlehole/internal/pkg/geospatial"
	"github.com/samirrijal/circlehole/internal/pkg/metrics"
	"github.com/samirrijal/circlehole/internal/pkg/telemetry"
)

// PolygonOptions controls how PolygonService assembles polygons.
type PolygonOptions struct {
	// EnforceOppositeWinding flips the hole when it winds the same way as the
	// outer boundary. When false the hole is passed through as generated.
	EnforceOppositeWinding bool
	// CacheTTL is the cache lifetime in seconds. Zero disables caching.
	CacheTTL int
	// AdapterTimeout bounds every cache and publish call. Zero means
	// DefaultAdapterTimeout.
	AdapterTimeout time.Duration
}

// DefaultAdapterTimeout is used when PolygonOptions.AdapterTimeout is zero.
const DefaultAdapterTimeout = 2 * time.Second

// PolygonService generates circle rings and assembles them into
// polygon-with-hole values for renderers.
type PolygonService struct {
	cache     ports.CacheService
	publisher ports.EventPublisher
	opts      PolygonOptions
	tracer    trace.Tracer
	now       func() time.Time
}

// NewPolygonService creates a new PolygonService. cache and publisher may be nil.
func NewPolygonService(cache ports.CacheService, publisher ports.EventPublisher, opts PolygonOptions) *PolygonService {
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = DefaultAdapterTimeout
	}
	return &PolygonService{
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		tracer:    telemetry.Tracer("usecases"),
		now:       time.Now,
	}
}

// Boundary returns the outer ring every polygon uses.
func (s *PolygonService) Boundary() domain.Ring {
	return geospatial.OuterBoundary()
}

// Ring returns the generated ring alone, for use as a standalone polygon.
func (s *PolygonService) Ring(ctx context.Context, spec domain.CircleSpec) (domain.Ring, error) {
	_, span := s.tracer.Start(ctx, "PolygonService.Ring", trace.WithAttributes(specAttributes(spec)...))
	defer span.End()

	ring, err := geospatial.GenerateRing(spec.Center, spec.Radius, spec.Points)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RingsGenerated.WithLabelValues("ring").Inc()
	metrics.RingPoints.Observe(float64(len(ring)))
	return ring, nil
}

// CircleHole returns the outer boundary with a circular hole described by spec.
func (s *PolygonService) CircleHole(ctx context.Context, spec domain.CircleSpec) (*domain.PolygonWithHole, error) {
	ctx, span := s.tracer.Start(ctx, "PolygonService.CircleHole", trace.WithAttributes(specAttributes(spec)...))
	defer span.End()

	if err := geospatial.ValidateCircle(spec.Center, spec.Radius, spec.Points); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	key := s.cacheKey(spec)
	if p := s.lookup(ctx, key); p != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.publish(ctx, p, true)
		return p, nil
	}

	start := time.Now()
	p, err := s.assemble(spec)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.RingGenerationDuration.Observe(time.Since(start).Seconds())
	metrics.RingsGenerated.WithLabelValues("circle_hole").Inc()
	metrics.RingPoints.Observe(float64(len(p.Hole)))

	s.store(ctx, key, p)
	s.publish(ctx, p, false)
	return p, nil
}

// FromProgress is CircleHole for a continuous control value such as a
// slider position. progress is truncated toward zero.
func (s *PolygonService) FromProgress(ctx context.Context, center domain.GeoPoint, radius, progress float64) (*domain.PolygonWithHole, error) {
	n, err := geospatial.PointCountFromProgress(progress)
	if err != nil {
		return nil, err
	}
	return s.CircleHole(ctx, domain.CircleSpec{Center: center, Radius: radius, Points: n})
}

func (s *PolygonService) assemble(spec domain.CircleSpec) (*domain.PolygonWithHole, error) {
	hole, err := geospatial.GenerateRing(spec.Center, spec.Radius, spec.Points)
	if err != nil {
		return nil, err
	}

	outer := geospatial.OuterBoundary()
	outerWinding := geospatial.Orientation(outer)
	holeWinding := geospatial.Orientation(hole)

	if s.opts.EnforceOppositeWinding && holeWinding != domain.Degenerate && holeWinding == outerWinding {
		hole = geospatial.Reverse(hole)
		holeWinding = holeWinding.Opposite()
		metrics.HolesReversed.Inc()
	}

	return &domain.PolygonWithHole{
		Outer:        outer,
		Hole:         hole,
		Spec:         spec,
		OuterWinding: outerWinding,
		HoleWinding:  holeWinding,
	}, nil
}

func (s *PolygonService) cacheKey(spec domain.CircleSpec) string {
	return fmt.Sprintf("circlehole:v1:%v:%v:%v:%d:%t",
		spec.Center.Lat, spec.Center.Lon, spec.Radius, spec.Points, s.opts.EnforceOppositeWinding)
}

func (s *PolygonService) lookup(ctx context.Context, key string) *domain.PolygonWithHole {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return nil
	}
	actx, cancel := context.WithTimeout(ctx, s.opts.AdapterTimeout)
	defer cancel()
	data, err := s.cache.Get(actx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("circle_hole").Inc()
		return nil
	}
	var p domain.PolygonWithHole
	if err := json.Unmarshal(data, &p); err != nil {
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		_ = s.cache.Delete(actx, key)
		metrics.CacheMisses.WithLabelValues("circle_hole").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("circle_hole").Inc()
	return &p
}

func (s *PolygonService) store(ctx context.Context, key string, p *domain.PolygonWithHole) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	actx, cancel := context.WithTimeout(ctx, s.opts.AdapterTimeout)
	defer cancel()
	if err := s.cache.Set(actx, key, data, s.opts.CacheTTL); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

func (s *PolygonService) publish(ctx context.Context, p *domain.PolygonWithHole, cached bool) {
	if s.publisher == nil {
		return
	}
	event := &domain.RingGeneratedEvent{
		Spec:        p.Spec,
		HoleWinding: p.HoleWinding,
		Cached:      cached,
		GeneratedAt: s.now(),
	}
	// A JetStream publish waits for its ack until ctx ends, which during a
	// broker outage is never for callers without a deadline.
	actx, cancel := context.WithTimeout(ctx, s.opts.AdapterTimeout)
	defer cancel()
	if err := s.publisher.PublishRingGenerated(actx, event); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "publish ring generated event failed", "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func specAttributes(spec domain.CircleSpec) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("circle.center.lat", spec.Center.Lat),
		attribute.Float64("circle.center.lon", spec.Center.Lon),
		attribute.Float64("circle.radius", spec.Radius),
		attribute.Int("circle.points", spec.Points),
	}
}
