package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/brand-loop/creatives/internal/models"
)

// Producer publishes artifact lifecycle events. Publishing is
// fire-and-forget: a broker outage must never fail a tool call.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
	}

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka producer initialized")

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishArtifact publishes an artifact.created event. Failures are logged
// and swallowed.
func (p *Producer) PublishArtifact(ctx context.Context, event models.ArtifactEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal artifact event")
		return
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		log.Warn().Err(err).
			Str("session_id", event.SessionID).
			Str("filename", event.Filename).
			Msg("Failed to publish artifact event")
		return
	}

	log.Info().
		Str("session_id", event.SessionID).
		Str("asset_name", event.AssetName).
		Int("version", event.Version).
		Str("topic", p.topic).
		Msg("Artifact event published to Kafka")
}

// Close closes the producer
func (p *Producer) Close() error {
	log.Info().Msg("Closing Kafka producer")
	return p.writer.Close()
}
