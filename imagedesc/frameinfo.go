package imagedesc

import "github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

// FrameInfo returns the geometry of one frame in the form the codecs take.
func (d *Descriptor) FrameInfo() *imagetypes.FrameInfo {
	fi := &imagetypes.FrameInfo{
		Width:                     uint16(d.columns),
		Height:                    uint16(d.rows),
		BitsAllocated:             uint16(d.bitsAllocated),
		BitsStored:                uint16(d.bitsCompressed),
		HighBit:                   uint16(d.bitsCompressed - 1),
		SamplesPerPixel:           uint16(d.samplesPerPixel),
		PhotometricInterpretation: d.photometric.String(),
	}
	if d.bitsCompressed > d.bitsAllocated || d.bitsCompressed < 1 {
		fi.BitsStored = uint16(d.bitsStored)
		fi.HighBit = uint16(d.highBit)
	}
	if d.IsSigned() {
		fi.PixelRepresentation = 1
	}
	if d.IsBanded() {
		fi.PlanarConfiguration = 1
	}
	return fi
}
