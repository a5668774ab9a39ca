package header

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedStream is wrapped by every FormatError
	ErrMalformedStream = errors.New("malformed bitstream")

	// ErrUnsupportedSOF is returned for JPEG frames no transfer syntax covers
	ErrUnsupportedSOF = errors.New("unsupported JPEG start of frame")
)

// FormatError reports an unexpected byte sequence and where it was found.
type FormatError struct {
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformedStream
}

func formatErrorf(offset int64, format string, args ...any) error {
	return &FormatError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
