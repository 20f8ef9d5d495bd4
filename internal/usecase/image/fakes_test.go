package image_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/google/uuid"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (b *memBlobs) UploadBytes(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failOn != "" && strings.HasSuffix(key, b.failOn) {
		return errors.New("object store unavailable")
	}
	b.objects[key] = data
	return nil
}

func (b *memBlobs) DownloadBytes(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objects[key]
	if !ok {
		return nil, errs.ErrDataUnavailable
	}
	return data, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	return nil
}

func (b *memBlobs) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memRecords struct {
	mu      sync.Mutex
	nextID  int64
	images  map[int64]*entity.Image
	failErr error
}

func newMemRecords() *memRecords {
	return &memRecords{images: make(map[int64]*entity.Image)}
}

func (r *memRecords) Create(_ context.Context, image *entity.Image) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return 0, r.failErr
	}
	r.nextID++
	cp := *image
	cp.ID = r.nextID
	r.images[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memRecords) GetByID(_ context.Context, id int64) (*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, ok := r.images[id]
	if !ok || img.IsDeleted {
		return nil, errs.ErrRecordNotFound
	}
	cp := *img
	return &cp, nil
}

func (r *memRecords) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Image, error) {
	return r.GetByID(ctx, id)
}

func (r *memRecords) List(_ context.Context, beforeID int64, limit int) ([]*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Image
	for id := r.nextID; id > 0 && len(out) < limit; id-- {
		img, ok := r.images[id]
		if !ok || img.IsDeleted || (beforeID > 0 && id >= beforeID) {
			continue
		}
		cp := *img
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRecords) UpdateDerivatives(_ context.Context, image *entity.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.images[image.ID]
	if !ok || cur.IsDeleted {
		return errs.ErrRecordNotFound
	}
	cur.StorageKey = image.StorageKey
	cur.ThumbnailKey = image.ThumbnailKey
	cur.FullKey = image.FullKey
	cur.PlaceholderHash = image.PlaceholderHash
	now := time.Now()
	cur.UpdatedAt = &now
	return nil
}

func (r *memRecords) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.images[id]
	if !ok || cur.IsDeleted {
		return errs.ErrRecordNotFound
	}
	cur.IsDeleted = true
	return nil
}

type memOutbox struct {
	mu        sync.Mutex
	events    []*entity.OutboxEvent
	olderThan time.Time
}

func (o *memOutbox) Create(_ context.Context, event *entity.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.events = append(o.events, event)
	return nil
}

func (o *memOutbox) GetPendingEvents(_ context.Context, _, limit int) ([]*entity.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range o.events {
		if e.Status == entity.Pending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *memOutbox) setStatus(IDs uuid.UUIDs, status entity.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.events {
		for _, id := range IDs {
			if e.ID == id {
				e.Status = status
			}
		}
	}
}

func (o *memOutbox) MarkAsProcessingBatch(_ context.Context, IDs uuid.UUIDs) error {
	o.setStatus(IDs, entity.Processing)
	return nil
}

func (o *memOutbox) MarkAsProcessedBatch(_ context.Context, IDs uuid.UUIDs) error {
	o.setStatus(IDs, entity.Processed)
	return nil
}

func (o *memOutbox) IncrementRetryCountBatch(_ context.Context, IDs uuid.UUIDs) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.events {
		for _, id := range IDs {
			if e.ID == id {
				e.RetryCount++
				e.Status = entity.Pending
			}
		}
	}
	return nil
}

func (o *memOutbox) MarkMaxRetriesAsFailed(_ context.Context, maxRetries int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.events {
		if e.RetryCount >= maxRetries {
			e.Status = entity.Failed
		}
	}
	return nil
}

func (o *memOutbox) DeleteOldProcessedAndFailed(_ context.Context, olderThan time.Time) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.olderThan = olderThan
	return 0, nil
}

type noTx struct{}

func (noTx) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

type fakeDeriver struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (d *fakeDeriver) Ingest(_ context.Context, data []byte) (*entity.ProcessedImage, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}
	return &entity.ProcessedImage{
		PlaceholderHash:   "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		Thumbnail:         []byte("thumb:" + string(data)),
		Full:              []byte("full:" + string(data)),
		Original:          data,
		OriginalMimeType:  "image/png",
		OriginalSizeBytes: int64(len(data)),
		Width:             640,
		Height:            480,
	}, nil
}

func (d *fakeDeriver) ResizeLossless(data []byte, width, height int, format entity.Format) ([]byte, error) {
	return data, nil
}
