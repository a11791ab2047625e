package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "circlehole",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "circlehole",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Geometry metrics
	RingsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "geometry",
		Name:      "rings_generated_total",
		Help:      "Total rings generated, by kind (ring, circle_hole)",
	}, []string{"kind"})

	RingPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "circlehole",
		Subsystem: "geometry",
		Name:      "ring_points",
		Help:      "Vertex count of generated rings",
		Buckets:   []float64{3, 8, 16, 32, 64, 128, 256, 360, 1024},
	})

	RingGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "circlehole",
		Subsystem: "geometry",
		Name:      "generation_duration_seconds",
		Help:      "Time spent generating and assembling a ring",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	InvalidArguments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "geometry",
		Name:      "invalid_arguments_total",
		Help:      "Requests rejected as invalid, by transport",
	}, []string{"transport"})

	HolesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "geometry",
		Name:      "holes_reversed_total",
		Help:      "Holes flipped to oppose the outer ring winding",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "circlehole",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "circlehole",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published to NATS, by result",
	}, []string{"result"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
