// internal/adapter/events/nats.go

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"trendradar/internal/config"
	"trendradar/internal/domain/trend"
)

// TrendEvent is published for every persisted trend
type TrendEvent struct {
	RunID       string           `json:"run_id"`
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	SignalScore int              `json:"signal_score"`
	Lifecycle   trend.Lifecycle  `json:"lifecycle"`
	Momentum    trend.Momentum   `json:"momentum"`
	Platforms   []trend.Platform `json:"platforms"`
	Category    string           `json:"category"`
	Headline    string           `json:"headline"`
}

// DetectedSubject returns the subject trend events are published on
func DetectedSubject(topic string) string {
	return topic + ".detected"
}

// RunCompletedSubject returns the subject run summaries are published on
func RunCompletedSubject(topic string) string {
	return topic + ".run.completed"
}

// NATSPublisher publishes trend events to NATS
type NATSPublisher struct {
	conn  *nats.Conn
	topic string
}

// NewNATSPublisher creates a publisher on the given topic prefix
func NewNATSPublisher(conn *nats.Conn, topic string) *NATSPublisher {
	return &NATSPublisher{
		conn:  conn,
		topic: topic,
	}
}

// PublishTrend publishes a trend detected event
func (p *NATSPublisher) PublishTrend(ctx context.Context, runID string, doc trend.Document) error {
	data, err := json.Marshal(NewTrendEvent(runID, doc))
	if err != nil {
		return fmt.Errorf("error marshaling trend event: %w", err)
	}
	return p.conn.Publish(DetectedSubject(p.topic), data)
}

// PublishRun publishes a run summary and flushes the connection
func (p *NATSPublisher) PublishRun(ctx context.Context, summary trend.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error marshaling run summary: %w", err)
	}
	if err := p.conn.Publish(RunCompletedSubject(p.topic), data); err != nil {
		return err
	}
	return p.conn.FlushWithContext(ctx)
}

// NewTrendEvent builds the event payload for a document
func NewTrendEvent(runID string, doc trend.Document) TrendEvent {
	r := trend.Record{Platforms: doc.Platforms}

	return TrendEvent{
		RunID:       runID,
		Key:         doc.Key,
		Name:        doc.Trend,
		SignalScore: doc.SignalScore,
		Lifecycle:   doc.Lifecycle,
		Momentum:    doc.Momentum,
		Platforms:   r.PlatformList(),
		Category:    doc.Category,
		Headline:    doc.Analysis.Headline,
	}
}

// NATSSubscriber adapts a NATS connection to callback subscriptions
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber creates a new subscriber
func NewNATSSubscriber(conn *nats.Conn) *NATSSubscriber {
	return &NATSSubscriber{conn: conn}
}

// Subscribe calls handler with the payload of every message on subject
func (s *NATSSubscriber) Subscribe(subject string, handler func(data []byte)) (func() error, error) {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub.Unsubscribe, nil
}

// Connect opens a NATS connection with reconnect settings
func Connect(cfg config.NATSConfig, logger zerolog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("trendradar"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Debug().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return nc, nil
}

// Noop discards all events. It is used when no NATS URL is configured.
type Noop struct{}

// PublishTrend does nothing
func (Noop) PublishTrend(ctx context.Context, runID string, doc trend.Document) error {
	return nil
}

// PublishRun does nothing
func (Noop) PublishRun(ctx context.Context, summary trend.RunSummary) error {
	return nil
}
