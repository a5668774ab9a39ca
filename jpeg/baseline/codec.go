// Package baseline implements JPEG Baseline (Process 1) for 8-bit
// monochrome and RGB frames.
package baseline

import (
	"fmt"
	"image/color"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

var (
	_ codec.Codec      = (*Codec)(nil)
	_ codec.Capability = (*Codec)(nil)
)

// Codec implements codec.Codec for JPEG Baseline
type Codec struct{}

// NewCodec creates a new JPEG Baseline codec
func NewCodec() *Codec {
	return &Codec{}
}

// UID returns the DICOM Transfer Syntax UID for JPEG Baseline
func (c *Codec) UID() string {
	return transfersyntax.JPEGBaseline8Bit
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "jpeg-baseline"
}

// CanEncode accepts unsigned 8-bit monochrome frames and 3-sample RGB or
// YBR_FULL frames. An empty photometric interpretation is taken from the
// sample count.
func (c *Codec) CanEncode(info *imagetypes.FrameInfo) bool {
	if info == nil || info.BitsAllocated != 8 || info.BitsStored > 8 || info.PixelRepresentation != 0 {
		return false
	}
	switch info.SamplesPerPixel {
	case 1:
		pi := info.PhotometricInterpretation
		return pi == "" || pi == "MONOCHROME1" || pi == "MONOCHROME2"
	case 3:
		pi := info.PhotometricInterpretation
		return pi == "" || pi == "RGB" || pi == "YBR_FULL"
	}
	return false
}

// Encode compresses one frame. YBR_FULL samples are converted to RGB first
// since the encoder applies its own color transform.
func (c *Codec) Encode(frame []byte, info *imagetypes.FrameInfo, p *codec.Parameters) ([]byte, error) {
	if !c.CanEncode(info) {
		return nil, fmt.Errorf("%w: %s needs 8-bit unsigned monochrome, RGB or YBR_FULL samples", codec.ErrUnsupportedFormat, c.Name())
	}
	quality := 85
	if p != nil {
		if p.Quality < 1 || p.Quality > 100 {
			return nil, codec.ErrInvalidQuality
		}
		quality = p.Quality
	}
	frame = codec.Interleave(frame, info)
	if info.PhotometricInterpretation == "YBR_FULL" {
		frame = ybrToRGB(frame)
	}
	return Encode(frame, int(info.Width), int(info.Height), int(info.SamplesPerPixel), quality)
}

// Decode decompresses one frame. Color frames come back as interleaved RGB.
func (c *Codec) Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error) {
	pixels, width, height, components, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("JPEG Baseline decode failed: %w", err)
	}
	out := &imagetypes.FrameInfo{}
	if info != nil {
		*out = *info
	}
	out.Width = uint16(width)
	out.Height = uint16(height)
	out.SamplesPerPixel = uint16(components)
	out.BitsAllocated = 8
	out.BitsStored = 8
	out.HighBit = 7
	out.PixelRepresentation = 0
	out.PlanarConfiguration = 0
	out.PhotometricInterpretation = "MONOCHROME2"
	if components == 3 {
		out.PhotometricInterpretation = "RGB"
	} else if info != nil && info.PhotometricInterpretation == "MONOCHROME1" {
		out.PhotometricInterpretation = "MONOCHROME1"
	}
	return pixels, out, nil
}

// ybrToRGB converts interleaved YBR_FULL samples into a new RGB buffer
func ybrToRGB(frame []byte) []byte {
	out := make([]byte, len(frame))
	for i := 0; i+2 < len(frame); i += 3 {
		out[i], out[i+1], out[i+2] = color.YCbCrToRGB(frame[i], frame[i+1], frame[i+2])
	}
	return out
}

func init() {
	c := NewCodec()
	codec.Register(c)
	codec.Export(c)
}
