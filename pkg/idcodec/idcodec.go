// Package idcodec maps dense integer primary keys to short opaque strings and back.
//
// The mapping is keyed by a salt, so two deployments with different salts
// produce different strings for the same key. It hides ordering and row counts
// from casual observers but is reversible by anyone holding the salt: never use
// it as an access-control mechanism.
package idcodec

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

const (
	_defaultMinLength = 6
	_defaultAlphabet  = hashids.DefaultAlphabet
)

var (
	ErrEmptySalt  = errors.New("idcodec: salt must not be empty")
	ErrInvalidID  = errors.New("idcodec: id must be a positive integer")
	errNotOneItem = errors.New("idcodec: hash does not carry exactly one id")
)

type Codec struct {
	minLength int
	alphabet  string

	h *hashids.HashID
}

func New(salt string, opts ...Option) (*Codec, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}

	c := &Codec{
		minLength: _defaultMinLength,
		alphabet:  _defaultAlphabet,
	}

	for _, opt := range opts {
		opt(c)
	}

	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = c.minLength
	hd.Alphabet = c.alphabet

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("idcodec - New - hashids.NewWithData: %w", err)
	}

	c.h = h

	return c, nil
}

func (c *Codec) MinLength() int {
	return c.minLength
}

func (c *Codec) Encode(id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("idcodec - Encode - %d: %w", id, ErrInvalidID)
	}

	s, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("idcodec - Encode - c.h.EncodeInt64: %w", err)
	}

	return s, nil
}

// Decoded is the result of Decode. OK is false for anything Encode with the
// same salt could not have produced.
type Decoded struct {
	ID int64
	OK bool
}

func (c *Codec) Decode(s string) Decoded {
	id, err := c.decode(s)
	if err != nil {
		return Decoded{}
	}

	return Decoded{ID: id, OK: true}
}

func (c *Codec) decode(s string) (id int64, err error) {
	// hashids indexes into its alphabet while unhashing; crafted input must
	// not take the process down.
	defer func() {
		if r := recover(); r != nil {
			id, err = 0, fmt.Errorf("idcodec - decode - panic: %v", r)
		}
	}()

	if len(s) < c.minLength {
		return 0, fmt.Errorf("idcodec - decode - length %d < %d", len(s), c.minLength)
	}

	ids, err := c.h.DecodeInt64WithError(s)
	if err != nil {
		return 0, fmt.Errorf("idcodec - decode - c.h.DecodeInt64WithError: %w", err)
	}

	if len(ids) != 1 || ids[0] <= 0 {
		return 0, errNotOneItem
	}

	return ids[0], nil
}
