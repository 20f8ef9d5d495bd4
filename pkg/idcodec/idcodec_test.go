package idcodec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T, salt string, opts ...Option) *Codec {
	t.Helper()

	c, err := New(salt, opts...)
	require.NoError(t, err)

	return c
}

func TestRoundTrip(t *testing.T) {
	c := newCodec(t, "pixelvault-test")

	for _, id := range []int64{1, 2, 1000, math.MaxInt32, 1 << 40} {
		s, err := c.Encode(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(s), 6, "id %d encoded to %q", id, s)

		d := c.Decode(s)
		require.True(t, d.OK, "decode %q", s)
		assert.Equal(t, id, d.ID)
	}
}

func TestEncodeRejectsNonPositive(t *testing.T) {
	c := newCodec(t, "pixelvault-test")

	for _, id := range []int64{0, -1, math.MinInt64} {
		_, err := c.Encode(id)
		assert.ErrorIs(t, err, ErrInvalidID)
	}
}

func TestMinLength(t *testing.T) {
	c := newCodec(t, "pixelvault-test", MinLength(12))

	s, err := c.Encode(7)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(s), 12)
	assert.Equal(t, int64(7), c.Decode(s).ID)
}

func TestNewRequiresSalt(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptySalt)
}

func TestNewRejectsShortAlphabet(t *testing.T) {
	_, err := New("salt", Alphabet("abc"))
	assert.Error(t, err)
}

func TestDecodeForeignStrings(t *testing.T) {
	c := newCodec(t, "pixelvault-test")

	for _, s := range []string{"", "not-a-real-hash", "42", "!!!!!!!", "ab cd ef"} {
		assert.False(t, c.Decode(s).OK, "expected %q to be rejected", s)
	}
}

func TestDifferentSaltsDoNotCrossDecode(t *testing.T) {
	a := newCodec(t, "deployment-a")
	b := newCodec(t, "deployment-b")

	sa, err := a.Encode(1000)
	require.NoError(t, err)
	sb, err := b.Encode(1000)
	require.NoError(t, err)

	assert.NotEqual(t, sa, sb)

	d := b.Decode(sa)
	if d.OK {
		assert.NotEqual(t, int64(1000), d.ID)
	}
}

func TestEncodingHidesOrder(t *testing.T) {
	c := newCodec(t, "pixelvault-test")

	s1, err := c.Encode(1)
	require.NoError(t, err)
	s2, err := c.Encode(2)
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, "1", s1)
}

func TestResolve(t *testing.T) {
	c := newCodec(t, "pixelvault-test")

	opaque, err := c.Encode(99)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want Resolution
	}{
		{"opaque", opaque, Resolution{ID: 99, Path: PathOpaque}},
		{"legacy numeric", "42", Resolution{ID: 42, Path: PathLegacyNumeric}},
		{"legacy with leading zeros", "0042", Resolution{ID: 42, Path: PathLegacyNumeric}},
		{"zero", "0", Resolution{Path: PathInvalid}},
		{"negative", "-5", Resolution{Path: PathInvalid}},
		{"signed", "+5", Resolution{Path: PathInvalid}},
		{"foreign", "not-a-real-hash", Resolution{Path: PathInvalid}},
		{"empty", "", Resolution{Path: PathInvalid}},
		{"overflow", "99999999999999999999999", Resolution{Path: PathInvalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Resolve(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Path != PathInvalid, got.Valid())
		})
	}
}
