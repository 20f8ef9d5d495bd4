package errs

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrDataUnavailable   = errors.New("data unavailable")
	ErrUnknownPreset     = errors.New("unknown preset")
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ingestion
	ErrDecode = errors.New("image decode failed")
	ErrEncode = errors.New("image encode failed")
)
