package adapter

import "errors"

var (
	// ErrMaskNotApplicable is returned when a mask is requested for pixel
	// data that cannot be decoded
	ErrMaskNotApplicable = errors.New("mask cannot be applied to this pixel data")

	// ErrUnsupportedContentType is returned by NewBitstreamObject for a
	// payload type it cannot wrap
	ErrUnsupportedContentType = errors.New("unsupported bitstream content type")
)
