package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/pkg/postgres"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	imagesTable = "images"

	// Columns
	idColumn                = "id"
	userIDColumn            = "user_id"
	titleColumn             = "title"
	storageKeyColumn        = "storage_key"
	originalKeyColumn       = "original_key"
	thumbnailKeyColumn      = "thumbnail_key"
	fullKeyColumn           = "full_key"
	originalMimeTypeColumn  = "original_mime_type"
	originalSizeBytesColumn = "original_size_bytes"
	placeholderHashColumn   = "placeholder_hash"
	widthColumn             = "width"
	heightColumn            = "height"
	isDeletedColumn         = "is_deleted"
	createdAtColumn         = "created_at"
	updatedAtColumn         = "updated_at"
)

var imageColumns = []string{
	idColumn,
	userIDColumn,
	titleColumn,
	storageKeyColumn,
	originalKeyColumn,
	thumbnailKeyColumn,
	fullKeyColumn,
	originalMimeTypeColumn,
	originalSizeBytesColumn,
	placeholderHashColumn,
	widthColumn,
	heightColumn,
	isDeletedColumn,
	createdAtColumn,
	updatedAtColumn,
}

type ImageRecordRepo struct {
	*postgres.Postgres
}

func NewImageRecordRepo(pg *postgres.Postgres) *ImageRecordRepo {
	return &ImageRecordRepo{pg}
}

func (r *ImageRecordRepo) Create(ctx context.Context, image *entity.Image) (int64, error) {
	sql, args, err := r.Builder.
		Insert(imagesTable).
		Columns(
			userIDColumn,
			titleColumn,
			storageKeyColumn,
			originalKeyColumn,
			thumbnailKeyColumn,
			fullKeyColumn,
			originalMimeTypeColumn,
			originalSizeBytesColumn,
			placeholderHashColumn,
			widthColumn,
			heightColumn,
			createdAtColumn,
		).
		Values(
			image.UserID,
			image.Title,
			image.StorageKey,
			image.OriginalKey,
			image.ThumbnailKey,
			image.FullKey,
			image.OriginalMimeType,
			image.OriginalSizeBytes,
			image.PlaceholderHash,
			image.Width,
			image.Height,
			image.CreatedAt,
		).
		Suffix("RETURNING " + idColumn).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ImageRecordRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var id int64
	err = executor.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ImageRecordRepo - Create - executor.QueryRow: %w", err)
	}

	return id, nil
}

func (r *ImageRecordRepo) GetByID(ctx context.Context, id int64) (*entity.Image, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *ImageRecordRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Image, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *ImageRecordRepo) getByID(ctx context.Context, id int64, suffix string) (*entity.Image, error) {
	q := r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.And{
			squirrel.Eq{idColumn: id},
			squirrel.Eq{isDeletedColumn: false},
		})
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	image, err := scanImage(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImageRecordRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageRecordRepo - GetByID - executor.QueryRow: %w", err)
	}

	return image, nil
}

// List returns live images newest first. beforeID <= 0 starts from the newest.
func (r *ImageRecordRepo) List(ctx context.Context, beforeID int64, limit int) ([]*entity.Image, error) {
	where := squirrel.And{squirrel.Eq{isDeletedColumn: false}}
	if beforeID > 0 {
		where = append(where, squirrel.Lt{idColumn: beforeID})
	}

	sql, args, err := r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Where(where).
		OrderBy(idColumn + " DESC").
		Limit(uint64(limit)). //nolint:gosec // limit is clamped by the caller
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - List - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - List - executor.Query: %w", err)
	}
	defer rows.Close()

	images := make([]*entity.Image, 0, limit)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("ImageRecordRepo - List - rows.Scan: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - List - rows.Err: %w", err)
	}

	return images, nil
}

// UpdateDerivatives swaps the derived columns of a live image after
// regeneration. Identity and original columns are never touched.
func (r *ImageRecordRepo) UpdateDerivatives(ctx context.Context, image *entity.Image) error {
	sql, args, err := r.Builder.
		Update(imagesTable).
		Set(storageKeyColumn, image.StorageKey).
		Set(thumbnailKeyColumn, image.ThumbnailKey).
		Set(fullKeyColumn, image.FullKey).
		Set(placeholderHashColumn, image.PlaceholderHash).
		Set(updatedAtColumn, time.Now()).
		Where(squirrel.And{
			squirrel.Eq{idColumn: image.ID},
			squirrel.Eq{isDeletedColumn: false},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - UpdateDerivatives - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - UpdateDerivatives - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ImageRecordRepo - UpdateDerivatives: %w", errs.ErrRecordNotFound)
	}

	return nil
}

// SoftDelete flags the row; bytes and the row itself are retained.
func (r *ImageRecordRepo) SoftDelete(ctx context.Context, id int64) error {
	sql, args, err := r.Builder.
		Update(imagesTable).
		Set(isDeletedColumn, true).
		Set(updatedAtColumn, time.Now()).
		Where(squirrel.And{
			squirrel.Eq{idColumn: id},
			squirrel.Eq{isDeletedColumn: false},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - SoftDelete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - SoftDelete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ImageRecordRepo - SoftDelete: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func scanImage(row pgx.Row) (*entity.Image, error) {
	var image entity.Image

	err := row.Scan(
		&image.ID,
		&image.UserID,
		&image.Title,
		&image.StorageKey,
		&image.OriginalKey,
		&image.ThumbnailKey,
		&image.FullKey,
		&image.OriginalMimeType,
		&image.OriginalSizeBytes,
		&image.PlaceholderHash,
		&image.Width,
		&image.Height,
		&image.IsDeleted,
		&image.CreatedAt,
		&image.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &image, nil
}
