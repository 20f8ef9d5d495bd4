package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

var (
	ErrUnexpectedEventType = errors.New("unexpected event type")
	ErrMalformedPayload    = errors.New("malformed event payload")
)

type EventConsumer struct {
	*consumer.Consumer
}

func NewEventConsumer(consumer *consumer.Consumer) *EventConsumer {
	return &EventConsumer{consumer}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.Reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - ec.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (ec *EventConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	err := ec.Reader.CommitMessages(ctx, event)
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - ec.Reader.CommitMessages: %w", err)
	}

	return nil
}

func (ec *EventConsumer) Close() error {
	err := ec.Consumer.Close()
	if err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}

// DecodeRegenerate reads a regenerate payload out of msg. Messages of another
// type, and payloads without a positive image id, are rejected.
func DecodeRegenerate(msg kafka.Message) (entity.RegeneratePayload, error) {
	if t := EventType(msg); t != entity.EventRegenerate {
		return entity.RegeneratePayload{}, fmt.Errorf("DecodeRegenerate - type %q: %w", t, ErrUnexpectedEventType)
	}

	var payload entity.RegeneratePayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return entity.RegeneratePayload{}, fmt.Errorf("DecodeRegenerate - json.Unmarshal: %w: %w", ErrMalformedPayload, err)
	}

	if payload.ImageID <= 0 {
		return entity.RegeneratePayload{}, fmt.Errorf("DecodeRegenerate - image_id %d: %w", payload.ImageID, ErrMalformedPayload)
	}

	return payload, nil
}
