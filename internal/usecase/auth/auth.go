package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/PixelVault/internal/repo"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
)

type UseCase struct {
	sessions repo.SessionRepo
	now      func() time.Time
}

func New(sessions repo.SessionRepo) *UseCase {
	return &UseCase{
		sessions: sessions,
		now:      time.Now,
	}
}

// CurrentUserID maps a session token to its user. Missing, unknown and
// expired tokens are anonymous (0, nil); only lookup failures are errors.
func (uc *UseCase) CurrentUserID(ctx context.Context, sessionToken string) (int64, error) {
	if sessionToken == "" {
		return 0, nil
	}

	userID, err := uc.sessions.GetUserID(ctx, sessionToken, uc.now())
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("AuthUseCase - CurrentUserID - uc.sessions.GetUserID: %w", err)
	}

	return userID, nil
}
