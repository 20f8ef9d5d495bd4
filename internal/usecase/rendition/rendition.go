// Package rendition decides which bytes answer a rendition request and
// whether the caller may have them.
package rendition

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/repo"
	"github.com/andreyxaxa/PixelVault/internal/usecase"
	"github.com/andreyxaxa/PixelVault/pkg/idcodec"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"golang.org/x/sync/singleflight"
)

// _sharedDownloadTimeout bounds a download that no longer belongs to any
// single request.
const _sharedDownloadTimeout = time.Minute

type UseCase struct {
	blobs    repo.BlobRepo
	records  repo.ImageRecordRepo
	deriver  usecase.Deriver
	ids      usecase.IDCodec
	sessions usecase.AuthUseCase

	// concurrent identical download requests share one resize
	group singleflight.Group

	logger logger.Interface
}

func New(
	blobs repo.BlobRepo,
	records repo.ImageRecordRepo,
	deriver usecase.Deriver,
	ids usecase.IDCodec,
	l logger.Interface,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		blobs:   blobs,
		records: records,
		deriver: deriver,
		ids:     ids,
		logger:  l,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

type Option func(*UseCase)

// WithSessions resolves RenditionRequest.SessionToken for protected kinds.
func WithSessions(auth usecase.AuthUseCase) Option {
	return func(uc *UseCase) {
		uc.sessions = auth
	}
}

// Get runs the request through identifier resolution, authorization, record
// lookup and rendition selection, in that order. The first failing step
// decides the error.
func (uc *UseCase) Get(ctx context.Context, req entity.RenditionRequest) (*entity.Rendition, error) {
	// 1. resolve
	res := uc.ids.Resolve(req.Ref)
	if !res.Valid() {
		return nil, fmt.Errorf("RenditionUseCase - Get - ref %q: %w", req.Ref, errs.ErrInvalidIdentifier)
	}

	// 2. authorize
	if req.Kind.Protected() {
		userID, err := uc.userID(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("RenditionUseCase - Get - uc.userID: %w", err)
		}
		if userID <= 0 {
			return nil, fmt.Errorf("RenditionUseCase - Get - %s: %w", req.Kind, errs.ErrUnauthorized)
		}
	}

	// 3. load
	image, err := uc.records.GetByID(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("RenditionUseCase - Get - uc.records.GetByID: %w", err)
	}

	publicID, err := uc.ids.Encode(image.ID)
	if err != nil {
		return nil, fmt.Errorf("RenditionUseCase - Get - uc.ids.Encode: %w", err)
	}

	if res.Path == idcodec.PathLegacyNumeric {
		uc.logger.Debug("legacy numeric reference %s resolved to %s", req.Ref, publicID)
	}

	out := &entity.Rendition{
		ImageID:  image.ID,
		PublicID: publicID,
		Kind:     req.Kind,
	}

	// 4. select or compute
	switch req.Kind {
	case entity.RenditionThumbnail:
		out.MIMEType = entity.FormatWebP.MIMEType()
		out.Data, err = uc.blobs.DownloadBytes(ctx, image.ThumbnailKey)
	case entity.RenditionFull:
		out.MIMEType = entity.FormatWebP.MIMEType()
		out.Data, err = uc.blobs.DownloadBytes(ctx, image.FullKey)
	case entity.RenditionOriginal:
		out.MIMEType = image.OriginalMimeType
		out.Data, err = uc.original(ctx, image)
	case entity.RenditionDownload:
		out.Preset = req.Preset
		out.MIMEType = req.Format.MIMEType()
		out.Data, err = uc.download(ctx, image, req.Preset, req.Format)
	default:
		return nil, fmt.Errorf("RenditionUseCase - Get - kind %q: %w", req.Kind, errs.ErrUnknownOperation)
	}
	if err != nil {
		return nil, fmt.Errorf("RenditionUseCase - Get - %s: %w", req.Kind, err)
	}

	return out, nil
}

// userID prefers an id the caller already resolved over a session lookup.
func (uc *UseCase) userID(ctx context.Context, req entity.RenditionRequest) (int64, error) {
	if req.UserID > 0 || req.SessionToken == "" || uc.sessions == nil {
		return req.UserID, nil
	}

	return uc.sessions.CurrentUserID(ctx, req.SessionToken)
}

func (uc *UseCase) original(ctx context.Context, image *entity.Image) ([]byte, error) {
	if image.OriginalKey == nil {
		return nil, errs.ErrDataUnavailable
	}

	return uc.blobs.DownloadBytes(ctx, *image.OriginalKey)
}

func (uc *UseCase) download(ctx context.Context, image *entity.Image, presetName string, format entity.Format) ([]byte, error) {
	preset, ok := entity.LookupPreset(presetName)
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", presetName, errs.ErrUnknownPreset)
	}

	if format != entity.FormatPNG && format != entity.FormatJPEG {
		return nil, fmt.Errorf("format %q: %w", format, errs.ErrUnsupportedFormat)
	}

	key := fmt.Sprintf("%d:%s:%s", image.ID, preset.Name, format)

	// the flight outlives whichever request started it; every caller waits on
	// its own context
	ch := uc.group.DoChan(key, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), _sharedDownloadTimeout)
		defer cancel()

		original, err := uc.original(sharedCtx, image)
		if err != nil {
			return nil, err
		}

		return uc.deriver.ResizeLossless(original, preset.Width, preset.Height, format)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}
