package pixeldata

import "errors"

var (
	// ErrUnsupportedPixelData is returned for a pixel data value that is
	// neither native nor encapsulated
	ErrUnsupportedPixelData = errors.New("unsupported pixel data")

	// ErrFrameOutOfRange is returned for a frame index outside the container
	ErrFrameOutOfRange = errors.New("frame index out of range")

	// ErrFragmentMismatch is returned when fragments cannot be grouped into
	// the declared number of frames
	ErrFragmentMismatch = errors.New("fragments do not match frame count")

	// ErrNoPixelData is returned by Locate when the file has no top-level
	// Pixel Data element
	ErrNoPixelData = errors.New("no pixel data element")

	// ErrNotPart10 is returned for a file without the DICM prefix
	ErrNotPart10 = errors.New("not a DICOM Part 10 file")
)
