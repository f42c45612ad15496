package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"pastebin-lite/internal/app/model"
)

// EventPublisher publishes paste lifecycle events to NATS JetStream.
type EventPublisher struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

// NewEventPublisher creates a publisher over an existing JetStream context.
func NewEventPublisher(js nats.JetStreamContext, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{js: js, logger: logger}
}

// Publish writes one event to the stream.
func (p *EventPublisher) Publish(kind, pasteID string) error {
	event := model.PasteEvent{
		ID:        uuid.New().String(),
		PasteID:   pasteID,
		Kind:      kind,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.EventStreamSubject, data)
	return err
}

// PublishAsync publishes in the background; failures are logged, never
// surfaced to the request path.
func (p *EventPublisher) PublishAsync(kind, pasteID string) {
	go func() {
		if err := p.Publish(kind, pasteID); err != nil {
			p.logger.Error("failed to publish paste event",
				zap.String("kind", kind),
				zap.String("paste_id", pasteID),
				zap.Error(err))
		}
	}()
}
