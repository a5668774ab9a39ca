package codec

import "errors"

var (
	// ErrCodecNotFound means no codec is registered for a transfer syntax
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter reports encoding parameters out of range
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidQuality reports a lossy quality outside 1-100
	ErrInvalidQuality = errors.New("invalid quality (must be 1-100)")

	// ErrUnsupportedFormat means a codec cannot handle the frame geometry
	ErrUnsupportedFormat = errors.New("unsupported format")
)
