package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/google/uuid"
)

type (
	BlobRepo interface {
		UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
		DownloadBytes(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
	}

	// ImageRecordRepo never returns soft-deleted rows from its read methods.
	ImageRecordRepo interface {
		Create(ctx context.Context, image *entity.Image) (int64, error)
		GetByID(ctx context.Context, id int64) (*entity.Image, error)
		GetByIDForUpdate(ctx context.Context, id int64) (*entity.Image, error)
		List(ctx context.Context, beforeID int64, limit int) ([]*entity.Image, error)
		UpdateDerivatives(ctx context.Context, image *entity.Image) error
		SoftDelete(ctx context.Context, id int64) error
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Time) (int64, error)
	}

	SessionRepo interface {
		GetUserID(ctx context.Context, token string, now time.Time) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
