package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher delivers committed outbox events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NATSPublisher publishes events to NATS subjects of the form
// <prefix>.game.<EventType>; the game id rides in the envelope so
// subscribers can filter per game.
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

func NewNATSPublisher(conn *nats.Conn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subjectPrefix: subjectPrefix}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	envelope := Envelope{
		EventID:   event.ID.String(),
		EventType: string(event.EventType),
		GameID:    event.GameID.String(),
		Timestamp: event.CreatedAt,
		Payload:   event.Payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := fmt.Sprintf("%s.game.%s", p.subjectPrefix, event.EventType)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// LogPublisher logs events instead of delivering them; used in development
// and when no bus is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.EventType)).
		Str("game_id", event.GameID.String()).
		Msg("publishing event")
	return nil
}
