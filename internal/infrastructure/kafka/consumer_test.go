package kafka

import (
	"testing"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regenerateMessage(body string) kafka.Message {
	return kafka.Message{
		Value:   []byte(body),
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(entity.EventRegenerate)}},
	}
}

func TestDecodeRegenerate(t *testing.T) {
	t.Parallel()

	payload, err := DecodeRegenerate(regenerateMessage(`{"image_id":9,"requested_by":7,"attempt":1}`))
	require.NoError(t, err)
	assert.Equal(t, entity.RegeneratePayload{ImageID: 9, RequestedBy: 7, Attempt: 1}, payload)
}

func TestDecodeRegenerateRoundTripsProducedMessage(t *testing.T) {
	t.Parallel()

	msg := eventMessage("images", &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: 3,
		Type:        entity.EventRegenerate,
		Payload:     []byte(`{"image_id":3,"requested_by":1}`),
	})

	payload, err := DecodeRegenerate(msg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), payload.ImageID)
}

func TestDecodeRegenerateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  kafka.Message
		want error
	}{
		{"no type header", kafka.Message{Value: []byte(`{"image_id":1}`)}, ErrUnexpectedEventType},
		{"other type", kafka.Message{
			Value:   []byte(`{"image_id":1}`),
			Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte("image.deleted")}},
		}, ErrUnexpectedEventType},
		{"not json", regenerateMessage(`not json`), ErrMalformedPayload},
		{"missing id", regenerateMessage(`{"requested_by":7}`), ErrMalformedPayload},
		{"negative id", regenerateMessage(`{"image_id":-4}`), ErrMalformedPayload},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeRegenerate(tt.msg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
