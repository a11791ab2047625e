package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/pkg/config"
	"github.com/samirrijal/circlehole/internal/pkg/geojson"
	"github.com/samirrijal/circlehole/internal/pkg/geospatial"
	"github.com/samirrijal/circlehole/internal/pkg/metrics"
)

// sliderMessage is sent by the client whenever its point-count control moves.
// Omitted fields keep their value from the previous message.
// Example: {"progress": 64.7} or {"lat": 37.78, "lon": -122.41, "points": 12}
type sliderMessage struct {
	Progress *float64 `json:"progress"` // continuous control value, truncated
	Points   *int     `json:"points"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Radius   *float64 `json:"radius"`
	Format   string   `json:"format"` // "json" (default) | "geojson"
}

// sliderReply is written back for every client message.
type sliderReply struct {
	Type  string          `json:"type"` // "polygon" | "error"
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

type polygonSource interface {
	CircleHole(ctx context.Context, spec domain.CircleSpec) (*domain.PolygonWithHole, error)
}

// sliderSession holds the last requested spec for one connection. It keeps no
// polygon: every message regenerates from scratch.
type sliderSession struct {
	polygons polygonSource
	limits   config.CircleConfig
	spec     domain.CircleSpec
	timeout  time.Duration // per message
}

func newSliderSession(polygons polygonSource, circle config.CircleConfig) *sliderSession {
	return &sliderSession{
		polygons: polygons,
		limits:   circle,
		spec: domain.CircleSpec{
			Center: circle.Center(),
			Radius: circle.Radius,
			Points: circle.Points,
		},
		timeout: requestTimeout,
	}
}

// handle applies one client message and returns the reply to send.
func (s *sliderSession) handle(ctx context.Context, raw []byte) sliderReply {
	var m sliderMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return sliderReply{Type: "error", Error: "invalid JSON"}
	}

	next := s.spec
	if m.Lat != nil {
		next.Center.Lat = *m.Lat
	}
	if m.Lon != nil {
		next.Center.Lon = *m.Lon
	}
	if m.Radius != nil {
		next.Radius = *m.Radius
	}
	switch {
	case m.Progress != nil:
		n, err := geospatial.PointCountFromProgress(*m.Progress)
		if err != nil {
			return s.reject(err.Error())
		}
		next.Points = n
	case m.Points != nil:
		next.Points = *m.Points
	}

	if err := checkSpec(next, s.limits.MaxPoints); err != nil {
		return s.reject(err.Error())
	}
	encode, ok := polygonEncoders[m.Format]
	if !ok {
		return s.reject("unknown format: " + m.Format)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p, err := s.polygons.CircleHole(ctx, next)
	if errors.Is(err, domain.ErrInvalidArgument) {
		return s.reject(err.Error())
	}
	if err != nil {
		slog.WarnContext(ctx, "ws polygon generation failed", "error", err)
		return sliderReply{Type: "error", Error: err.Error()}
	}
	data, err := encode(p)
	if err != nil {
		return sliderReply{Type: "error", Error: err.Error()}
	}
	s.spec = next
	return sliderReply{Type: "polygon", Data: data}
}

var polygonEncoders = map[string]func(*domain.PolygonWithHole) ([]byte, error){
	"":        func(p *domain.PolygonWithHole) ([]byte, error) { return json.Marshal(p) },
	"json":    func(p *domain.PolygonWithHole) ([]byte, error) { return json.Marshal(p) },
	"geojson": geojson.EncodePolygon,
}

func (s *sliderSession) reject(msg string) sliderReply {
	metrics.InvalidArguments.WithLabelValues("ws").Inc()
	return sliderReply{Type: "error", Error: msg}
}

// WebSocketHandler returns a handler that upgrades to WebSocket and answers
// every slider message with a regenerated polygon.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		logger := slog.Default().With("remote", remoteAddr)
		logger.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Keep-alive ping
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		session := newSliderSession(deps.Polygons, deps.Circle)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if err := writeJSON(session.handle(ctx, msg)); err != nil {
				logger.Warn("ws write failed", "error", err)
				break
			}
		}

		logger.Info("ws client disconnected")
	}
}
