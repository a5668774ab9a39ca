package imagedesc

import (
	"errors"
	"fmt"
)

// Validate checks the descriptor against DICOM image pixel rules. Descriptors
// are built permissively; callers that need conformance call Validate.
func (d *Descriptor) Validate() error {
	var errs []error
	switch d.samplesPerPixel {
	case 1, 3, 4:
	default:
		errs = append(errs, fmt.Errorf("%d: %w", d.samplesPerPixel, ErrInvalidSamplesPerPixel))
	}
	if d.bitsAllocated != 1 && d.bitsAllocated%8 != 0 {
		errs = append(errs, fmt.Errorf("%d: %w", d.bitsAllocated, ErrInvalidBitsAllocated))
	}
	if d.bitsStored < 1 {
		errs = append(errs, fmt.Errorf("%d: %w", d.bitsStored, ErrInvalidBitsStored))
	}
	if want := d.photometric.Samples(); want != 0 && want != d.samplesPerPixel {
		errs = append(errs, fmt.Errorf("%s with %d samples: %w", d.photometric, d.samplesPerPixel, ErrPhotometricMismatch))
	}
	if d.photometric == PaletteColor && !d.paletteColorLUT {
		errs = append(errs, ErrMissingPaletteLUT)
	}
	return errors.Join(errs...)
}
