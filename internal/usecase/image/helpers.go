package image

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/google/uuid"
)

type blobObject struct {
	key         string
	data        []byte
	contentType string
}

func blobKey(storageKey uuid.UUID, name string) string {
	return fmt.Sprintf("images/%s/%s", storageKey, name)
}

func trimTitle(title string) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= _maxTitleLength {
		return title
	}

	return string([]rune(title)[:_maxTitleLength])
}

func (uc *UseCase) regenerateEvent(p entity.RegeneratePayload) (*entity.OutboxEvent, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: p.ImageID,
		Type:        entity.EventRegenerate,
		Payload:     payload,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
	}, nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}
