package bytechannel

import "errors"

var (
	// ErrClosed is returned by Read, Write and positioning calls on a closed channel
	ErrClosed = errors.New("byte channel closed")

	// ErrNegativePosition is returned when a position or size argument is negative
	ErrNegativePosition = errors.New("negative position")

	// ErrPositionOutOfRange is returned when a position exceeds the addressable range
	ErrPositionOutOfRange = errors.New("position exceeds addressable range")
)
