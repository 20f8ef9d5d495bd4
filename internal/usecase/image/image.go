package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/repo"
	"github.com/andreyxaxa/PixelVault/internal/usecase"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultListLimit = 24
	_maxListLimit     = 100
	_outboxRetention  = 7 * 24 * time.Hour
	_maxTitleLength   = 200
)

type UseCase struct {
	blobs      repo.BlobRepo
	records    repo.ImageRecordRepo
	outbox     repo.OutboxRepo
	transactor repo.Transactor

	deriver usecase.Deriver
	ids     usecase.IDCodec
	newUUID usecase.UUIDGenerator

	logger logger.Interface
}

func New(
	blobs repo.BlobRepo,
	records repo.ImageRecordRepo,
	outbox repo.OutboxRepo,
	transactor repo.Transactor,
	deriver usecase.Deriver,
	ids usecase.IDCodec,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		blobs:      blobs,
		records:    records,
		outbox:     outbox,
		transactor: transactor,
		deriver:    deriver,
		ids:        ids,
		newUUID:    uuid.New,
		logger:     l,
	}
}

// WithUUIDGenerator replaces the blob key source.
func (uc *UseCase) WithUUIDGenerator(g usecase.UUIDGenerator) *UseCase {
	uc.newUUID = g
	return uc
}

// Upload derives the full rendition set, stores every blob and only then
// creates the record. Any failure removes the blobs already written.
func (uc *UseCase) Upload(ctx context.Context, userID int64, title string, data []byte) (*entity.Image, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("ImageUseCase - Upload: %w", errs.ErrUnauthorized)
	}

	// 1. derive everything in memory first
	processed, err := uc.deriver.Ingest(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Upload - uc.deriver.Ingest: %w", err)
	}

	storageKey := uc.newUUID()
	originalKey := blobKey(storageKey, "original")

	image := &entity.Image{
		UserID:            userID,
		Title:             trimTitle(title),
		StorageKey:        storageKey,
		OriginalKey:       &originalKey,
		ThumbnailKey:      blobKey(storageKey, "thumbnail.webp"),
		FullKey:           blobKey(storageKey, "full.webp"),
		OriginalMimeType:  processed.OriginalMimeType,
		OriginalSizeBytes: processed.OriginalSizeBytes,
		PlaceholderHash:   processed.PlaceholderHash,
		Width:             processed.Width,
		Height:            processed.Height,
		CreatedAt:         time.Now().UTC(),
	}

	objects := []blobObject{
		{key: originalKey, data: processed.Original, contentType: processed.OriginalMimeType},
		{key: image.ThumbnailKey, data: processed.Thumbnail, contentType: entity.FormatWebP.MIMEType()},
		{key: image.FullKey, data: processed.Full, contentType: entity.FormatWebP.MIMEType()},
	}

	// 2. store blobs
	if err = uc.putAll(ctx, objects); err != nil {
		uc.deleteAll(ctx, "Upload", objects)
		return nil, fmt.Errorf("ImageUseCase - Upload - uc.putAll: %w", err)
	}

	// 3. create the record
	id, err := uc.records.Create(ctx, image)
	if err != nil {
		uc.deleteAll(ctx, "Upload", objects)
		return nil, fmt.Errorf("ImageUseCase - Upload - uc.records.Create: %w", err)
	}
	image.ID = id

	return image, nil
}

func (uc *UseCase) Get(ctx context.Context, ref string) (*entity.Image, error) {
	id, err := uc.resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Get: %w", err)
	}

	image, err := uc.records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Get - uc.records.GetByID: %w", err)
	}

	return image, nil
}

// List pages newest first. beforeRef is the public id of the last image of
// the previous page, or empty for the first page.
func (uc *UseCase) List(ctx context.Context, beforeRef string, limit int) ([]*entity.Image, error) {
	var beforeID int64

	if beforeRef != "" {
		id, err := uc.resolve(beforeRef)
		if err != nil {
			return nil, fmt.Errorf("ImageUseCase - List: %w", err)
		}
		beforeID = id
	}

	switch {
	case limit <= 0:
		limit = _defaultListLimit
	case limit > _maxListLimit:
		limit = _maxListLimit
	}

	images, err := uc.records.List(ctx, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - List - uc.records.List: %w", err)
	}

	return images, nil
}

// Delete soft-deletes an image owned by userID. Blobs are retained.
func (uc *UseCase) Delete(ctx context.Context, userID int64, ref string) error {
	if userID <= 0 {
		return fmt.Errorf("ImageUseCase - Delete: %w", errs.ErrUnauthorized)
	}

	id, err := uc.resolve(ref)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Delete: %w", err)
	}

	return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		image, err := uc.records.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("ImageUseCase - Delete - uc.records.GetByIDForUpdate: %w", err)
		}

		if image.UserID != userID {
			return fmt.Errorf("ImageUseCase - Delete: %w", errs.ErrForbidden)
		}

		if err = uc.records.SoftDelete(ctx, id); err != nil {
			return fmt.Errorf("ImageUseCase - Delete - uc.records.SoftDelete: %w", err)
		}

		return nil
	})
}

// RequestRegeneration records an outbox event in the same transaction that
// checks ownership; the relay publishes it later.
func (uc *UseCase) RequestRegeneration(ctx context.Context, userID int64, ref string) error {
	if userID <= 0 {
		return fmt.Errorf("ImageUseCase - RequestRegeneration: %w", errs.ErrUnauthorized)
	}

	id, err := uc.resolve(ref)
	if err != nil {
		return fmt.Errorf("ImageUseCase - RequestRegeneration: %w", err)
	}

	return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		image, err := uc.records.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("ImageUseCase - RequestRegeneration - uc.records.GetByIDForUpdate: %w", err)
		}

		if image.UserID != userID {
			return fmt.Errorf("ImageUseCase - RequestRegeneration: %w", errs.ErrForbidden)
		}

		if image.OriginalKey == nil {
			return fmt.Errorf("ImageUseCase - RequestRegeneration: %w", errs.ErrDataUnavailable)
		}

		event, err := uc.regenerateEvent(entity.RegeneratePayload{ImageID: id, RequestedBy: userID})
		if err != nil {
			return fmt.Errorf("ImageUseCase - RequestRegeneration - uc.regenerateEvent: %w", err)
		}

		if err = uc.outbox.Create(ctx, event); err != nil {
			return fmt.Errorf("ImageUseCase - RequestRegeneration - uc.outbox.Create: %w", err)
		}

		return nil
	})
}

// RequeueRegeneration writes a fresh regenerate event for a payload the
// consumer gave up on. Ownership was checked when the first event was written.
func (uc *UseCase) RequeueRegeneration(ctx context.Context, payload entity.RegeneratePayload) error {
	event, err := uc.regenerateEvent(payload)
	if err != nil {
		return fmt.Errorf("ImageUseCase - RequeueRegeneration - uc.regenerateEvent: %w", err)
	}

	if err = uc.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("ImageUseCase - RequeueRegeneration - uc.outbox.Create: %w", err)
	}

	return nil
}

// Regenerate rebuilds the derived blobs of an image from its stored original
// and swaps them in. Old derived blobs are removed after the swap commits.
func (uc *UseCase) Regenerate(ctx context.Context, id int64) error {
	// 1. load current state
	image, err := uc.records.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Regenerate - uc.records.GetByID: %w", err)
	}

	if image.OriginalKey == nil {
		return fmt.Errorf("ImageUseCase - Regenerate: %w", errs.ErrDataUnavailable)
	}

	original, err := uc.blobs.DownloadBytes(ctx, *image.OriginalKey)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Regenerate - uc.blobs.DownloadBytes: %w", err)
	}

	// 2. re-derive
	processed, err := uc.deriver.Ingest(ctx, original)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Regenerate - uc.deriver.Ingest: %w", err)
	}

	// 3. store the new derivatives under a fresh prefix
	storageKey := uc.newUUID()
	objects := []blobObject{
		{key: blobKey(storageKey, "thumbnail.webp"), data: processed.Thumbnail, contentType: entity.FormatWebP.MIMEType()},
		{key: blobKey(storageKey, "full.webp"), data: processed.Full, contentType: entity.FormatWebP.MIMEType()},
	}

	if err = uc.putAll(ctx, objects); err != nil {
		uc.deleteAll(ctx, "Regenerate", objects)
		return fmt.Errorf("ImageUseCase - Regenerate - uc.putAll: %w", err)
	}

	stale := []blobObject{{key: image.ThumbnailKey}, {key: image.FullKey}}

	// 4. swap
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := uc.records.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("ImageUseCase - Regenerate - uc.records.GetByIDForUpdate: %w", err)
		}

		stale = []blobObject{{key: current.ThumbnailKey}, {key: current.FullKey}}

		current.StorageKey = storageKey
		current.ThumbnailKey = objects[0].key
		current.FullKey = objects[1].key
		current.PlaceholderHash = processed.PlaceholderHash

		if err = uc.records.UpdateDerivatives(ctx, current); err != nil {
			return fmt.Errorf("ImageUseCase - Regenerate - uc.records.UpdateDerivatives: %w", err)
		}

		return nil
	})
	if err != nil {
		uc.deleteAll(ctx, "Regenerate", objects)
		return fmt.Errorf("ImageUseCase - Regenerate - uc.transactor.WithinTransaction: %w", err)
	}

	// 5. drop what the record no longer points at
	uc.deleteAll(ctx, "Regenerate", stale)

	return nil
}

func (uc *UseCase) PublicID(id int64) (string, error) {
	s, err := uc.ids.Encode(id)
	if err != nil {
		return "", fmt.Errorf("ImageUseCase - PublicID - uc.ids.Encode: %w", err)
	}

	return s, nil
}

func (uc *UseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outbox.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - GetPendingEvents - uc.outbox.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *UseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outbox.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkAsProcessingBatch - uc.outbox.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outbox.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkAsProcessedBatch - uc.outbox.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outbox.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - IncrementRetryCountBatch - uc.outbox.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outbox.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkMaxRetriesAsFailed - uc.outbox.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *UseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outbox.DeleteOldProcessedAndFailed(ctx, time.Now().Add(-_outboxRetention))
	if err != nil {
		return fmt.Errorf("ImageUseCase - CleanupOutbox - uc.outbox.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old outbox events, count = %d", count)
	}

	return nil
}

func (uc *UseCase) resolve(ref string) (int64, error) {
	res := uc.ids.Resolve(ref)
	if !res.Valid() {
		return 0, errs.ErrInvalidIdentifier
	}

	return res.ID, nil
}

func (uc *UseCase) putAll(ctx context.Context, objects []blobObject) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for _, o := range objects {
		o := o
		eg.Go(func() error {
			return uc.blobs.UploadBytes(egCtx, o.key, o.data, o.contentType)
		})
	}

	return eg.Wait()
}

// deleteAll is best effort; a missing object is not an error worth reporting.
func (uc *UseCase) deleteAll(ctx context.Context, method string, objects []blobObject) {
	for _, o := range objects {
		if o.key == "" {
			continue
		}
		err := uc.blobs.Delete(context.WithoutCancel(ctx), o.key)
		if err != nil && !errors.Is(err, errs.ErrDataUnavailable) {
			uc.logger.Warn("ImageUseCase - %s - uc.blobs.Delete: key=%s, error=%v", method, o.key, err)
		}
	}
}
