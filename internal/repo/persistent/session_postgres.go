package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/PixelVault/pkg/postgres"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	sessionsTable = "sessions"

	sessionTokenColumn     = "token"
	sessionUserIDColumn    = "user_id"
	sessionExpiresAtColumn = "expires_at"
)

// SessionRepo reads sessions issued by the OAuth login flow.
type SessionRepo struct {
	*postgres.Postgres
}

func NewSessionRepo(pg *postgres.Postgres) *SessionRepo {
	return &SessionRepo{pg}
}

func (r *SessionRepo) GetUserID(ctx context.Context, token string, now time.Time) (int64, error) {
	sql, args, err := r.Builder.
		Select(sessionUserIDColumn).
		From(sessionsTable).
		Where(squirrel.And{
			squirrel.Eq{sessionTokenColumn: token},
			squirrel.Gt{sessionExpiresAtColumn: now},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("SessionRepo - GetUserID - r.Builder.ToSql: %w", err)
	}

	var userID int64
	err = r.GetExecutor(ctx).QueryRow(ctx, sql, args...).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("SessionRepo - GetUserID: %w", errs.ErrRecordNotFound)
		}
		return 0, fmt.Errorf("SessionRepo - GetUserID - QueryRow.Scan: %w", err)
	}

	return userID, nil
}
