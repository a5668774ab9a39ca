// Package imagedesc derives the pixel geometry of a DICOM image from its
// attributes. Every other part of the engine reads geometry from a
// Descriptor instead of from raw attributes.
package imagedesc

import (
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
)

// Descriptor is the geometry and sample contract of an image.
//
// It is immutable after construction except for the per-frame min/max cache,
// which has a single owner: concurrent access to the cache is not synchronized.
type Descriptor struct {
	rows            int
	columns         int
	frames          int
	samplesPerPixel int
	photometric     Photometric
	planarConfig    int
	bitsAllocated   int
	bitsStored      int
	bitsCompressed  int
	highBit         int
	pixelRep        int
	floatPixelData  bool

	sopClassUID          string
	seriesInstanceUID    string
	modality             string
	stationName          string
	anatomicRegion       string
	bodyPartExamined     string
	pixelPresentation    string
	presentationLUTShape string

	paletteColorLUT   bool
	pixelPadding      *int
	pixelPaddingLimit *int
	overlayData       bool
	embeddedOverlays  []int
	modalityLUT       *ModalityLUT
	voiLUT            *VOILUT

	minMax []*MinMax
}

// ModalityLUT describes the modality transformation.
type ModalityLUT struct {
	Slope       float64
	Intercept   float64
	RescaleType string
	// Sequence is true when a Modality LUT Sequence replaces the rescale.
	Sequence bool
}

// VOILUT describes the values of interest transformation.
type VOILUT struct {
	WindowCenter []float64
	WindowWidth  []float64
	Function     string
	Sequence     bool
}

// New builds a descriptor from ds.
func New(ds *dicom.Dataset) (*Descriptor, error) {
	return NewWithBitsCompressed(ds, 0)
}

// NewWithBitsCompressed builds a descriptor whose compressed bit depth is
// bitsCompressed instead of bits stored. Non-positive values mean no override.
func NewWithBitsCompressed(ds *dicom.Dataset, bitsCompressed int) (*Descriptor, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	d := &Descriptor{
		rows:            max(0, attrs.IntOr(ds, tag.Rows, 0)),
		columns:         max(0, attrs.IntOr(ds, tag.Columns, 0)),
		frames:          attrs.IntOr(ds, tag.NumberOfFrames, 1),
		samplesPerPixel: attrs.IntOr(ds, tag.SamplesPerPixel, 1),
		planarConfig:    attrs.IntOr(ds, attrs.PlanarConfiguration, 0),
		bitsAllocated:   attrs.IntOr(ds, tag.BitsAllocated, 8),
		pixelRep:        attrs.IntOr(ds, tag.PixelRepresentation, 0),
	}
	if d.frames < 1 {
		d.frames = 1
	}
	if d.samplesPerPixel < 1 {
		d.samplesPerPixel = 1
	}
	if d.bitsAllocated < 1 {
		d.bitsAllocated = 8
	}
	if d.pixelRep != 1 {
		d.pixelRep = 0
	}
	if d.planarConfig != 1 {
		d.planarConfig = 0
	}

	d.bitsStored = min(attrs.IntOr(ds, tag.BitsStored, d.bitsAllocated), d.bitsAllocated)
	d.bitsCompressed = d.bitsStored
	if bitsCompressed > 0 {
		d.bitsCompressed = bitsCompressed
	}
	d.highBit = attrs.IntOr(ds, tag.HighBit, d.bitsStored-1)
	if d.highBit >= d.bitsAllocated || d.highBit < d.bitsStored-1 {
		d.highBit = d.bitsStored - 1
	}

	d.photometric = ParsePhotometric(attrs.StringOr(ds, tag.PhotometricInterpretation, ""))
	if d.photometric == PhotometricUnknown {
		if d.samplesPerPixel == 1 {
			d.photometric = Monochrome2
		} else {
			d.photometric = RGB
		}
	}

	d.sopClassUID = attrs.StringOr(ds, tag.SOPClassUID, "")
	d.seriesInstanceUID = attrs.StringOr(ds, tag.SeriesInstanceUID, "")
	d.modality = attrs.StringOr(ds, tag.Modality, "")
	d.stationName = attrs.StringOr(ds, tag.StationName, "")
	d.bodyPartExamined = attrs.StringOr(ds, tag.BodyPartExamined, "")
	d.pixelPresentation = attrs.StringOr(ds, attrs.PixelPresentation, "")
	d.presentationLUTShape = attrs.StringOr(ds, attrs.PresentationLUTShape, "")
	d.anatomicRegion = anatomicRegion(ds)

	d.floatPixelData = attrs.Has(ds, attrs.FloatPixelData) || attrs.Has(ds, attrs.DoubleFloatPixelData) ||
		d.bitsAllocated == 64 ||
		(d.bitsAllocated == 32 && floatModalities[d.modality])

	d.paletteColorLUT = attrs.Has(ds, attrs.RedPaletteColorLookupTableData) ||
		attrs.Has(ds, attrs.SegmentedRedPaletteColorLUTData)
	if v, ok := attrs.Int(ds, attrs.PixelPaddingValue); ok {
		d.pixelPadding = &v
	}
	if v, ok := attrs.Int(ds, attrs.PixelPaddingRangeLimit); ok {
		d.pixelPaddingLimit = &v
	}

	for i := 0; i < 16; i++ {
		if attrs.Has(ds, attrs.OverlayTag(i, attrs.OverlayData)) {
			d.overlayData = true
			continue
		}
		bits, ok := attrs.Int(ds, attrs.OverlayTag(i, attrs.OverlayBitsAllocated))
		if ok && bits > 1 {
			d.embeddedOverlays = append(d.embeddedOverlays, 0x6000+2*i)
		}
	}

	d.modalityLUT = readModalityLUT(ds)
	d.voiLUT = readVOILUT(ds)
	d.minMax = make([]*MinMax, d.frames)
	return d, nil
}

func anatomicRegion(ds *dicom.Dataset) string {
	items := attrs.Items(ds, attrs.AnatomicRegionSequence)
	if len(items) == 0 {
		return ""
	}
	item := &dicom.Dataset{Elements: items[0]}
	if s, ok := attrs.String(item, attrs.CodeMeaning); ok && s != "" {
		return s
	}
	return attrs.StringOr(item, attrs.CodeValue, "")
}

func readModalityLUT(ds *dicom.Dataset) *ModalityLUT {
	seq := attrs.Has(ds, attrs.ModalityLUTSequence)
	slope := attrs.Floats(ds, tag.RescaleSlope)
	intercept := attrs.Floats(ds, tag.RescaleIntercept)
	if !seq && len(slope) == 0 && len(intercept) == 0 {
		return nil
	}
	lut := &ModalityLUT{Slope: 1, Sequence: seq}
	if len(slope) > 0 {
		lut.Slope = slope[0]
	}
	if len(intercept) > 0 {
		lut.Intercept = intercept[0]
	}
	lut.RescaleType = attrs.StringOr(ds, tag.RescaleType, "")
	return lut
}

func readVOILUT(ds *dicom.Dataset) *VOILUT {
	seq := attrs.Has(ds, attrs.VOILUTSequence)
	center := attrs.Floats(ds, tag.WindowCenter)
	width := attrs.Floats(ds, tag.WindowWidth)
	if !seq && len(center) == 0 && len(width) == 0 {
		return nil
	}
	return &VOILUT{
		WindowCenter: center,
		WindowWidth:  width,
		Function:     attrs.StringOr(ds, attrs.VOILUTFunction, ""),
		Sequence:     seq,
	}
}

func (d *Descriptor) Rows() int                 { return d.rows }
func (d *Descriptor) Columns() int              { return d.columns }
func (d *Descriptor) Frames() int               { return d.frames }
func (d *Descriptor) SamplesPerPixel() int      { return d.samplesPerPixel }
func (d *Descriptor) Photometric() Photometric  { return d.photometric }
func (d *Descriptor) PlanarConfiguration() int  { return d.planarConfig }
func (d *Descriptor) BitsAllocated() int        { return d.bitsAllocated }
func (d *Descriptor) BitsStored() int           { return d.bitsStored }
func (d *Descriptor) BitsCompressed() int       { return d.bitsCompressed }
func (d *Descriptor) HighBit() int              { return d.highBit }
func (d *Descriptor) PixelRepresentation() int  { return d.pixelRep }
func (d *Descriptor) SOPClassUID() string       { return d.sopClassUID }
func (d *Descriptor) SeriesInstanceUID() string { return d.seriesInstanceUID }
func (d *Descriptor) Modality() string          { return d.modality }
func (d *Descriptor) StationName() string       { return d.stationName }
func (d *Descriptor) AnatomicRegion() string    { return d.anatomicRegion }
func (d *Descriptor) BodyPartExamined() string  { return d.bodyPartExamined }
func (d *Descriptor) PixelPresentation() string { return d.pixelPresentation }
func (d *Descriptor) PresentationLUTShape() string {
	return d.presentationLUTShape
}

// IsSigned reports pixel representation 1.
func (d *Descriptor) IsSigned() bool { return d.pixelRep == 1 }

// IsBanded reports planar configuration 1 on a multi-sample image.
func (d *Descriptor) IsBanded() bool { return d.planarConfig == 1 && d.samplesPerPixel > 1 }

// IsMultiframe reports more than one frame.
func (d *Descriptor) IsMultiframe() bool { return d.frames > 1 }

// floatModalities store 32-bit samples as IEEE floats.
var floatModalities = map[string]bool{"RF": true, "XA": true, "RTDOSE": true, "CT": true}

// IsFloatPixelData reports IEEE floating point samples.
func (d *Descriptor) IsFloatPixelData() bool { return d.floatPixelData }

// HasPaletteColorLUT reports palette color lookup table data.
func (d *Descriptor) HasPaletteColorLUT() bool { return d.paletteColorLUT }

// PixelPaddingValue returns the Pixel Padding Value if present.
func (d *Descriptor) PixelPaddingValue() (int, bool) {
	if d.pixelPadding == nil {
		return 0, false
	}
	return *d.pixelPadding, true
}

// PixelPaddingRangeLimit returns the Pixel Padding Range Limit if present.
func (d *Descriptor) PixelPaddingRangeLimit() (int, bool) {
	if d.pixelPaddingLimit == nil {
		return 0, false
	}
	return *d.pixelPaddingLimit, true
}

// HasOverlayData reports an overlay plane stored in its own Overlay Data element.
func (d *Descriptor) HasOverlayData() bool { return d.overlayData }

// EmbeddedOverlays returns the 60xx groups whose overlay bits live in unused
// bits of the pixel data.
func (d *Descriptor) EmbeddedOverlays() []int {
	return append([]int(nil), d.embeddedOverlays...)
}

// ModalityLUT returns the modality transformation, or nil.
func (d *Descriptor) ModalityLUT() *ModalityLUT { return d.modalityLUT }

// VOILUT returns the VOI transformation, or nil.
func (d *Descriptor) VOILUT() *VOILUT { return d.voiLUT }

// FrameLength returns the byte length of one native frame.
func (d *Descriptor) FrameLength() int64 {
	return int64(d.rows) * int64(d.columns) * int64(d.samplesPerPixel) * int64(d.bitsAllocated) / 8
}

// Length returns the byte length of all native frames.
func (d *Descriptor) Length() int64 {
	return d.FrameLength() * int64(d.frames)
}
