package rle

import "errors"

var (
	// ErrInvalidHeader is returned for a malformed 64-byte RLE header
	ErrInvalidHeader = errors.New("rle: invalid header")

	// ErrSegmentCount is returned when the header declares the wrong number of segments
	ErrSegmentCount = errors.New("rle: unexpected segment count")

	// ErrTruncated is returned when a segment ends before the frame is complete
	ErrTruncated = errors.New("rle: segment truncated")
)
