// Package extended implements JPEG Extended (Process 2 and 4): sequential
// DCT coding with 8 or 12-bit samples.
package extended

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

var (
	_ codec.Codec      = (*ExtendedCodec)(nil)
	_ codec.Capability = (*ExtendedCodec)(nil)
)

// ExtendedCodec implements codec.Codec for JPEG Extended
type ExtendedCodec struct{}

// NewExtendedCodec creates a new JPEG Extended codec
func NewExtendedCodec() *ExtendedCodec {
	return &ExtendedCodec{}
}

// Name returns the codec name
func (c *ExtendedCodec) Name() string {
	return "jpeg-extended"
}

// UID returns the transfer syntax UID
func (c *ExtendedCodec) UID() string {
	return transfersyntax.JPEGExtended12Bit
}

// CanEncode accepts up to 12 stored bits, signed or not, with one sample
// or three RGB or YBR_FULL samples
func (c *ExtendedCodec) CanEncode(info *imagetypes.FrameInfo) bool {
	if info == nil || info.BitsStored < 2 || info.BitsStored > 12 {
		return false
	}
	if info.BitsAllocated != 8 && info.BitsAllocated != 16 || info.BitsStored > info.BitsAllocated {
		return false
	}
	pi := info.PhotometricInterpretation
	switch info.SamplesPerPixel {
	case 1:
		return pi == "" || pi == "MONOCHROME1" || pi == "MONOCHROME2"
	case 3:
		return pi == "" || pi == "RGB" || pi == "YBR_FULL"
	}
	return false
}

// precision is the SOF precision used for bitsStored
func precision(bitsStored int) int {
	if bitsStored <= 8 {
		return 8
	}
	return 12
}

// Encode compresses one native frame. Signed samples are offset into the
// unsigned range and restored by Decode when the frame info says signed.
func (c *ExtendedCodec) Encode(frame []byte, info *imagetypes.FrameInfo, p *codec.Parameters) ([]byte, error) {
	if !c.CanEncode(info) {
		return nil, fmt.Errorf("%w: %s cannot encode %d/%d bits with %d samples",
			codec.ErrUnsupportedFormat, c.Name(), info.BitsStored, info.BitsAllocated, info.SamplesPerPixel)
	}
	quality := codec.NewParameters().Quality
	if p != nil {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		quality = p.Quality
	}
	if len(frame) < codec.FrameLength(info) {
		return nil, fmt.Errorf("%w: frame is %d bytes, want %d", codec.ErrInvalidParameter, len(frame), codec.FrameLength(info))
	}

	bits := int(info.BitsStored)
	frame = codec.Interleave(frame[:codec.FrameLength(info)], info)
	samples, err := codec.ReadSamples(frame, int(info.BitsAllocated), bits)
	if err != nil {
		return nil, err
	}
	if info.PixelRepresentation == 1 {
		flipSign(samples, bits)
	}

	spp := int(info.SamplesPerPixel)
	pixels := int(info.Width) * int(info.Height)
	planes := make([][]int, spp)
	for s := range planes {
		planes[s] = make([]int, pixels)
		for i := 0; i < pixels; i++ {
			planes[s][i] = samples[i*spp+s]
		}
	}
	return Encode(planes, int(info.Width), int(info.Height), Options{
		Precision: precision(bits),
		Quality:   quality,
		RGB:       info.PhotometricInterpretation != "YBR_FULL",
	})
}

// Decode decompresses one frame to interleaved little endian samples. Color
// frames come back as RGB. When info is given its bit depth and pixel
// representation shape the output.
func (c *ExtendedCodec) Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("JPEG Extended decode failed: %w", err)
	}

	out := &imagetypes.FrameInfo{}
	if info != nil {
		*out = *info
		if int(info.Width) != img.Width || int(info.Height) != img.Height {
			return nil, nil, fmt.Errorf("decoded dimensions (%dx%d) don't match expected (%dx%d)",
				img.Width, img.Height, info.Width, info.Height)
		}
	}
	spp := len(img.Planes)
	out.Width = uint16(img.Width)
	out.Height = uint16(img.Height)
	out.SamplesPerPixel = uint16(spp)
	out.PlanarConfiguration = 0
	if out.BitsStored == 0 || int(out.BitsStored) > img.Precision || precision(int(out.BitsStored)) != img.Precision {
		out.BitsStored = uint16(img.Precision)
		out.PixelRepresentation = 0
	}
	out.HighBit = out.BitsStored - 1
	if out.BitsAllocated < out.BitsStored || out.BitsAllocated > 16 {
		out.BitsAllocated = 8
		if out.BitsStored > 8 {
			out.BitsAllocated = 16
		}
	}
	switch {
	case spp == 3:
		out.PhotometricInterpretation = "RGB"
	case out.PhotometricInterpretation != "MONOCHROME1":
		out.PhotometricInterpretation = "MONOCHROME2"
	}

	bits := int(out.BitsStored)
	maxVal := 1<<uint(bits) - 1
	samples := make([]int, img.Width*img.Height*spp)
	for s, plane := range img.Planes {
		for i, v := range plane {
			samples[i*spp+s] = min(v, maxVal)
		}
	}
	signed := out.PixelRepresentation == 1
	if signed {
		flipSign(samples, bits)
	}
	return codec.WriteSamples(samples, int(out.BitsAllocated), bits, signed), out, nil
}

func init() {
	c := NewExtendedCodec()
	codec.Register(c)
	codec.Export(c)
}
