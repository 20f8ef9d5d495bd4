package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	tokens  map[string]int64
	expires map[string]time.Time
	err     error
}

func (f *fakeSessions) GetUserID(_ context.Context, token string, now time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	id, ok := f.tokens[token]
	if !ok || !now.Before(f.expires[token]) {
		return 0, errs.ErrRecordNotFound
	}
	return id, nil
}

func TestCurrentUserID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := &fakeSessions{
		tokens:  map[string]int64{"live": 7, "stale": 8},
		expires: map[string]time.Time{"live": now.Add(time.Hour), "stale": now.Add(-time.Hour)},
	}

	uc := New(sessions)
	uc.now = func() time.Time { return now }

	tests := []struct {
		name  string
		token string
		want  int64
	}{
		{name: "live session", token: "live", want: 7},
		{name: "expired session", token: "stale", want: 0},
		{name: "unknown token", token: "nope", want: 0},
		{name: "no cookie", token: "", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uc.CurrentUserID(context.Background(), tc.token)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCurrentUserIDLookupFailure(t *testing.T) {
	t.Parallel()

	uc := New(&fakeSessions{err: errors.New("connection refused")})

	_, err := uc.CurrentUserID(context.Background(), "live")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrRecordNotFound)
}
