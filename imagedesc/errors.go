package imagedesc

import "errors"

var (
	// ErrNilDataset is returned when a descriptor is built without a dataset
	ErrNilDataset = errors.New("nil dataset")

	// ErrInvalidSamplesPerPixel is reported by Validate for samples outside {1, 3, 4}
	ErrInvalidSamplesPerPixel = errors.New("invalid samples per pixel")

	// ErrInvalidBitsAllocated is reported by Validate for bits allocated that are not 1 or a multiple of 8
	ErrInvalidBitsAllocated = errors.New("invalid bits allocated")

	// ErrInvalidBitsStored is reported by Validate when bits stored is not positive
	ErrInvalidBitsStored = errors.New("invalid bits stored")

	// ErrPhotometricMismatch is reported by Validate when the photometric interpretation does not fit the sample count
	ErrPhotometricMismatch = errors.New("photometric interpretation does not match samples per pixel")

	// ErrMissingPaletteLUT is reported by Validate for PALETTE COLOR images without a lookup table
	ErrMissingPaletteLUT = errors.New("palette color image without palette lookup table")

	// ErrUnsupportedSampleSize is returned when frame statistics are asked for an unsupported bits allocated
	ErrUnsupportedSampleSize = errors.New("unsupported sample size")
)
