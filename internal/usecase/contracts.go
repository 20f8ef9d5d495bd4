package usecase

import (
	"context"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/pkg/idcodec"
	"github.com/google/uuid"
)

type (
	ImageUseCase interface {
		Upload(ctx context.Context, userID int64, title string, data []byte) (*entity.Image, error)
		Get(ctx context.Context, ref string) (*entity.Image, error)
		List(ctx context.Context, beforeRef string, limit int) ([]*entity.Image, error)
		Delete(ctx context.Context, userID int64, ref string) error
		RequestRegeneration(ctx context.Context, userID int64, ref string) error
		Regenerate(ctx context.Context, id int64) error
		RequeueRegeneration(ctx context.Context, payload entity.RegeneratePayload) error
		PublicID(id int64) (string, error)

		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	RenditionUseCase interface {
		Get(ctx context.Context, req entity.RenditionRequest) (*entity.Rendition, error)
	}

	AuthUseCase interface {
		// CurrentUserID returns 0 and no error for anonymous requests.
		CurrentUserID(ctx context.Context, sessionToken string) (int64, error)
	}

	// Deriver is the slice of the derivative generator the use-cases drive.
	Deriver interface {
		Ingest(ctx context.Context, data []byte) (*entity.ProcessedImage, error)
		ResizeLossless(data []byte, width, height int, format entity.Format) ([]byte, error)
	}

	IDCodec interface {
		Encode(id int64) (string, error)
		Resolve(s string) idcodec.Resolution
	}

	// UUIDGenerator lets tests pin blob keys.
	UUIDGenerator func() uuid.UUID
)
