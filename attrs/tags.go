package attrs

import "github.com/suyashkumar/dicom/pkg/tag"

// Tags used by the engine that are addressed by number.
var (
	PlanarConfiguration                  = tag.Tag{Group: 0x0028, Element: 0x0006}
	PixelPaddingValue                    = tag.Tag{Group: 0x0028, Element: 0x0120}
	PixelPaddingRangeLimit               = tag.Tag{Group: 0x0028, Element: 0x0121}
	PixelPresentation                    = tag.Tag{Group: 0x0008, Element: 0x9205}
	PresentationLUTShape                 = tag.Tag{Group: 0x2050, Element: 0x0020}
	RedPaletteColorLookupTableDescriptor = tag.Tag{Group: 0x0028, Element: 0x1101}
	RedPaletteColorLookupTableData       = tag.Tag{Group: 0x0028, Element: 0x1201}
	SegmentedRedPaletteColorLUTData      = tag.Tag{Group: 0x0028, Element: 0x1221}
	ModalityLUTSequence                  = tag.Tag{Group: 0x0028, Element: 0x3000}
	VOILUTSequence                       = tag.Tag{Group: 0x0028, Element: 0x3010}
	VOILUTFunction                       = tag.Tag{Group: 0x0028, Element: 0x1056}
	AnatomicRegionSequence               = tag.Tag{Group: 0x0008, Element: 0x2218}
	CodeValue                            = tag.Tag{Group: 0x0008, Element: 0x0100}
	CodeMeaning                          = tag.Tag{Group: 0x0008, Element: 0x0104}
	FloatPixelData                       = tag.Tag{Group: 0x7FE0, Element: 0x0008}
	DoubleFloatPixelData                 = tag.Tag{Group: 0x7FE0, Element: 0x0009}
	LossyImageCompression                = tag.Tag{Group: 0x0028, Element: 0x2110}
	LossyImageCompressionRatio           = tag.Tag{Group: 0x0028, Element: 0x2112}
	LossyImageCompressionMethod          = tag.Tag{Group: 0x0028, Element: 0x2114}
	FrameTime                            = tag.Tag{Group: 0x0018, Element: 0x1063}
	CineRate                             = tag.Tag{Group: 0x0018, Element: 0x0040}
	PixelAspectRatio                     = tag.Tag{Group: 0x0028, Element: 0x0034}
	FrameIncrementPointer                = tag.Tag{Group: 0x0028, Element: 0x0009}
)

// Overlay element numbers, relative to a 60xx group.
const (
	OverlayBitsAllocated uint16 = 0x0100
	OverlayBitPosition   uint16 = 0x0102
	OverlayData          uint16 = 0x3000
)

// OverlayTag returns element elem of the overlay plane with index i (0-15).
func OverlayTag(i int, elem uint16) tag.Tag {
	return tag.Tag{Group: uint16(0x6000 + 2*i), Element: elem}
}
