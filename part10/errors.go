package part10

import "errors"

var (
	// ErrFrameLength is returned when a native frame does not have the
	// declared length
	ErrFrameLength = errors.New("native frame length mismatch")

	// ErrMissingTransferSyntax is returned when the writer has no transfer
	// syntax to declare
	ErrMissingTransferSyntax = errors.New("missing transfer syntax")

	// ErrMalformedMeta is returned when a file meta group cannot be walked
	ErrMalformedMeta = errors.New("malformed file meta information")
)
