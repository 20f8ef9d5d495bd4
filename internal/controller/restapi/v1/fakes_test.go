package v1

import (
	"context"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/pkg/idcodec"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
)

type stubAuth map[string]int64

func (a stubAuth) CurrentUserID(_ context.Context, token string) (int64, error) {
	return a[token], nil
}

type failingAuth struct{ err error }

func (a failingAuth) CurrentUserID(context.Context, string) (int64, error) { return 0, a.err }

type mapBlobs map[string][]byte

func (b mapBlobs) UploadBytes(context.Context, string, []byte, string) error { return nil }

func (b mapBlobs) DownloadBytes(_ context.Context, key string) ([]byte, error) {
	data, ok := b[key]
	if !ok {
		return nil, errs.ErrDataUnavailable
	}
	return data, nil
}

func (b mapBlobs) Delete(context.Context, string) error { return nil }

type mapRecords map[int64]*entity.Image

func (r mapRecords) Create(context.Context, *entity.Image) (int64, error) { return 0, nil }

func (r mapRecords) GetByID(_ context.Context, id int64) (*entity.Image, error) {
	img, ok := r[id]
	if !ok || img.IsDeleted {
		return nil, errs.ErrRecordNotFound
	}
	return img, nil
}

func (r mapRecords) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Image, error) {
	return r.GetByID(ctx, id)
}

func (r mapRecords) List(context.Context, int64, int) ([]*entity.Image, error) { return nil, nil }

func (r mapRecords) UpdateDerivatives(context.Context, *entity.Image) error { return nil }

func (r mapRecords) SoftDelete(context.Context, int64) error { return nil }

type echoDeriver struct{}

func (echoDeriver) Ingest(context.Context, []byte) (*entity.ProcessedImage, error) {
	return nil, errs.ErrUnknownOperation
}

func (echoDeriver) ResizeLossless(data []byte, width, height int, format entity.Format) ([]byte, error) {
	return []byte(string(format) + ":" + string(data)), nil
}

// stubImages covers the catalogue endpoints without storage.
type stubImages struct {
	codec      *idcodec.Codec
	uploadErr  error
	uploaded   []byte
	title      string
	list       []*entity.Image
	lastAfter  string
	lastLimit  int
	deleteErr  error
	deletedBy  int64
	regenerate []string
}

func (s *stubImages) Upload(_ context.Context, userID int64, title string, data []byte) (*entity.Image, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploaded = data
	s.title = title
	return &entity.Image{ID: 42, UserID: userID, Title: title, OriginalMimeType: "image/png", Width: 4, Height: 3,
		PlaceholderHash: "L00000fQfQfQfQfQfQfQfQfQfQfQ", CreatedAt: time.Unix(0, 0).UTC()}, nil
}

func (s *stubImages) Get(_ context.Context, ref string) (*entity.Image, error) {
	res := s.codec.Resolve(ref)
	if !res.Valid() {
		return nil, errs.ErrInvalidIdentifier
	}
	if res.ID != 42 {
		return nil, errs.ErrRecordNotFound
	}
	return &entity.Image{ID: 42, Title: "cat"}, nil
}

func (s *stubImages) List(_ context.Context, after string, limit int) ([]*entity.Image, error) {
	s.lastAfter = after
	s.lastLimit = limit
	return s.list, nil
}

func (s *stubImages) Delete(_ context.Context, userID int64, _ string) error {
	if userID == 0 {
		return errs.ErrUnauthorized
	}
	s.deletedBy = userID
	return s.deleteErr
}

func (s *stubImages) RequestRegeneration(_ context.Context, userID int64, ref string) error {
	if userID == 0 {
		return errs.ErrUnauthorized
	}
	s.regenerate = append(s.regenerate, ref)
	return nil
}

func (s *stubImages) Regenerate(context.Context, int64) error { return nil }

func (s *stubImages) RequeueRegeneration(context.Context, entity.RegeneratePayload) error { return nil }

func (s *stubImages) PublicID(id int64) (string, error) { return s.codec.Encode(id) }

func (s *stubImages) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (s *stubImages) MarkAsProcessingBatch(context.Context, []*entity.OutboxEvent) error { return nil }

func (s *stubImages) MarkAsProcessedBatch(context.Context, []*entity.OutboxEvent) error { return nil }

func (s *stubImages) IncrementRetryCountBatch(context.Context, []*entity.OutboxEvent) error {
	return nil
}

func (s *stubImages) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }

func (s *stubImages) CleanupOutbox(context.Context) error { return nil }
