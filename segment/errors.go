package segment

import "errors"

// Validation errors of NewList, checked in this order.
var (
	ErrNilPath           = errors.New("segment list: nil path")
	ErrNilPositions      = errors.New("segment list: nil positions")
	ErrNilLengths        = errors.New("segment list: nil lengths")
	ErrLengthMismatch    = errors.New("segment list: positions and lengths differ in length")
	ErrNoSegments        = errors.New("segment list: no segments")
	ErrNegativePosition  = errors.New("segment list: negative position")
	ErrNonPositiveLength = errors.New("segment list: non-positive length")
)

// ErrSegmentOutOfRange is returned by ReadSegment for an index outside the list.
var ErrSegmentOutOfRange = errors.New("segment index out of range")
