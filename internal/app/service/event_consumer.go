package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"pastebin-lite/internal/app/model"
	apprepository "pastebin-lite/internal/app/repository"
)

// EventConsumer drains paste events from NATS JetStream into Postgres.
type EventConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	repo   apprepository.EventRepository
}

// NewEventConsumer creates a new paste event consumer.
func NewEventConsumer(js nats.JetStreamContext, logger *zap.Logger, repo apprepository.EventRepository) *EventConsumer {
	return &EventConsumer{js: js, logger: logger, repo: repo}
}

// Start ensures the stream and durable consumer exist, then begins
// consuming paste events in the background.
func (c *EventConsumer) Start() error {
	_, err := c.js.StreamInfo(model.EventStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.EventStreamName,
			Subjects: []string{model.EventStreamSubject},
			MaxBytes: model.EventStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.EventStreamName, model.EventConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.EventStreamName, &nats.ConsumerConfig{
			Durable:   model.EventConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.EventStreamSubject, model.EventConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *EventConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.PasteEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal paste event", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.Insert(ctx, &event); err != nil {
				c.logger.Error("failed to store paste event",
					zap.String("id", event.ID),
					zap.String("paste_id", event.PasteID),
					zap.Error(err))
				msg.Nak()
				continue
			}

			c.logger.Debug("paste event stored",
				zap.String("id", event.ID),
				zap.String("paste_id", event.PasteID),
				zap.String("kind", event.Kind),
				zap.Time("timestamp", event.Timestamp),
			)

			msg.Ack()
		}
	}
}
