package entity

import (
	"time"

	"github.com/google/uuid"
)

type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID int64      `json:"aggregate_id"`
	Type        EventType  `json:"type"`
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}

type EventType string

const (
	EventRegenerate EventType = "image.regenerate"
)

// RegeneratePayload is the body of an EventRegenerate message.
type RegeneratePayload struct {
	ImageID     int64 `json:"image_id"`
	RequestedBy int64 `json:"requested_by"`
	// Attempt counts how many times the consumer re-queued this regeneration.
	Attempt int `json:"attempt,omitempty"`
}
