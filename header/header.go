// Package header inspects compressed pixel-data bitstreams (JPEG, JPEG-LS,
// JPEG 2000 and MPEG-1/2) without decoding samples, and derives the image
// geometry and transfer syntax they imply.
package header

import (
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/imagedesc"
)

// Parser is implemented by every bitstream header parser.
type Parser interface {
	// TransferSyntaxUID returns the syntax the bitstream is encoded in.
	TransferSyntaxUID() string

	// Attributes returns the image attributes implied by the bitstream.
	// The boolean is false when the stream carried no usable header.
	Attributes() (*dicom.Dataset, bool)

	// CodecParameters returns the raw values Attributes is built from.
	CodecParameters() CodecParameters
}

// CodecParameters is the sample layout found in a bitstream header.
type CodecParameters struct {
	Rows                int
	Columns             int
	SamplesPerPixel     int
	BitsAllocated       int
	BitsStored          int
	PixelRepresentation int
	Photometric         imagedesc.Photometric
	Lossy               bool

	// Video only
	Frames           int
	FrameTime        float64 // milliseconds
	CineRate         int
	PixelAspectRatio [2]int
}

// Synthesize merges the attributes derived by p into ds, replacing any
// geometry already present. It is a no-op when p found no header.
func Synthesize(p Parser, ds *dicom.Dataset) error {
	derived, ok := p.Attributes()
	if !ok {
		return nil
	}
	for _, e := range derived.Elements {
		attrs.Put(ds, e)
	}
	return nil
}

type attr struct {
	t tag.Tag
	v any
}

// build renders cp as a dataset.
func build(cp CodecParameters) (*dicom.Dataset, error) {
	highBit := cp.BitsStored - 1
	if highBit < 0 {
		highBit = 0
	}
	set := []attr{
		{tag.SamplesPerPixel, []int{cp.SamplesPerPixel}},
		{tag.PhotometricInterpretation, []string{cp.Photometric.String()}},
		{tag.Rows, []int{cp.Rows}},
		{tag.Columns, []int{cp.Columns}},
		{tag.BitsAllocated, []int{cp.BitsAllocated}},
		{tag.BitsStored, []int{cp.BitsStored}},
		{tag.HighBit, []int{highBit}},
		{tag.PixelRepresentation, []int{cp.PixelRepresentation}},
	}
	if cp.SamplesPerPixel > 1 {
		set = append(set, attr{attrs.PlanarConfiguration, []int{0}})
	}
	if cp.Lossy {
		set = append(set, attr{attrs.LossyImageCompression, []string{"01"}})
	}
	if cp.Frames > 0 {
		set = append(set, attr{tag.NumberOfFrames, []string{strconv.Itoa(cp.Frames)}})
	}
	if cp.FrameTime > 0 {
		set = append(set,
			attr{attrs.FrameTime, []string{strconv.FormatFloat(cp.FrameTime, 'f', 4, 64)}},
			attr{attrs.CineRate, []string{strconv.Itoa(cp.CineRate)}},
		)
	}
	if cp.PixelAspectRatio[0] > 0 {
		set = append(set, attr{attrs.PixelAspectRatio, []string{
			strconv.Itoa(cp.PixelAspectRatio[0]), strconv.Itoa(cp.PixelAspectRatio[1]),
		}})
	}

	ds := &dicom.Dataset{}
	for _, a := range set {
		if err := attrs.Set(ds, a.t, a.v); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
