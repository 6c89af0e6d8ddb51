package kafka

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/undercover-social/backend/internal/application"
	"github.com/undercover-social/backend/internal/kafka/registry"

	// Blank import triggers init() in each handler file,
	// registering all event handlers into the registry.
	_ "github.com/undercover-social/backend/internal/kafka/handlers"
)

// Consumer wraps the franz-go Kafka client. It turns feed and whisper
// events into notification deliveries through the fan-out engine.
type Consumer struct {
	client *kgo.Client
	fanout *application.FanoutEngine
}

// New creates a Consumer with the given brokers, group ID, and topics.
func New(brokers []string, groupID string, topics []string, fanout *application.FanoutEngine) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, fanout: fanout}, nil
}

// Start begins polling Kafka and processing records. Blocks until ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("kafka consumer started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.process(ctx, r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("kafka commit error")
		}
	}

	c.client.Close()
	log.Info().Msg("kafka consumer stopped")
}

// process dispatches a Kafka record to the registered handler via the
// registry, then delivers the result.
func (c *Consumer) process(ctx context.Context, r *kgo.Record) {
	log.Debug().
		Str("topic", r.Topic).
		Str("key", string(r.Key)).
		Msg("processing kafka record")

	// notification-events doesn't use eventType routing
	event := registry.DispatchDirect(r.Topic, r.Value)
	if event == nil {
		event = registry.Dispatch(r.Topic, r.Value)
	}

	if event == nil {
		log.Debug().Str("topic", r.Topic).Msg("no handler matched, skipping")
		return
	}
	if len(event.Targets) == 0 {
		log.Debug().Str("topic", r.Topic).Msg("event resolved to zero recipients, skipping")
		return
	}

	if err := c.fanout.Deliver(ctx, event.Input, event.Targets); err != nil {
		log.Error().Err(err).
			Str("topic", r.Topic).
			Str("type", string(event.Input.Type)).
			Int("targets", len(event.Targets)).
			Msg("failed to deliver notification from kafka event")
	}
}
