package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/circlehole/internal/core/domain"
)

const (
	// StreamName is the JetStream stream holding circle-hole events.
	StreamName = "CIRCLE_HOLES"
	// SubjectRingGenerated carries domain.RingGeneratedEvent as JSON.
	SubjectRingGenerated = "holes.ring.generated"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("circlehole"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := StreamConfig()
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// StreamConfig describes the stream events are written to.
func StreamConfig() nats.StreamConfig {
	return nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"holes.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
}

// PublishRingGenerated publishes an event after a polygon is assembled.
func (p *Publisher) PublishRingGenerated(ctx context.Context, event *domain.RingGeneratedEvent) error {
	data, err := EncodeRingGenerated(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectRingGenerated, data, nats.Context(ctx))
	return err
}

// EncodeRingGenerated is the wire form of a RingGeneratedEvent.
func EncodeRingGenerated(event *domain.RingGeneratedEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode ring event: %w", err)
	}
	return data, nil
}

// IsConnected reports whether the underlying connection is up.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
