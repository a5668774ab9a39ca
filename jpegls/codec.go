package jpegls

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// DefaultNear is the error bound used by the near-lossless codec when the
// parameters leave NEAR at zero.
const DefaultNear = 2

var (
	_ codec.Codec      = (*Codec)(nil)
	_ codec.Capability = (*Codec)(nil)
)

// Codec is JPEG-LS Lossless (.80) or Near-Lossless (.81).
type Codec struct {
	uid         string
	defaultNear int
}

// NewCodec creates a codec for JPEGLSLossless or JPEGLSNearLossless.
func NewCodec(uid string) *Codec {
	c := &Codec{uid: uid}
	if uid == transfersyntax.JPEGLSNearLossless {
		c.defaultNear = DefaultNear
	}
	return c
}

// Name returns the codec name
func (c *Codec) Name() string {
	if c.uid == transfersyntax.JPEGLSNearLossless {
		return "jpeg-ls-near-lossless"
	}
	return "jpeg-ls-lossless"
}

// UID returns the transfer syntax UID
func (c *Codec) UID() string {
	return c.uid
}

// CanEncode accepts 2 to 16 stored bits with one or three samples
func (c *Codec) CanEncode(info *imagetypes.FrameInfo) bool {
	return info != nil &&
		(info.BitsAllocated == 8 || info.BitsAllocated == 16) &&
		info.BitsStored >= 2 && info.BitsStored <= 16 && info.BitsStored <= info.BitsAllocated &&
		(info.SamplesPerPixel == 1 || info.SamplesPerPixel == 3)
}

func (c *Codec) near(p *codec.Parameters) int {
	if c.uid != transfersyntax.JPEGLSNearLossless {
		return 0
	}
	if p != nil && p.Near > 0 {
		return p.Near
	}
	return c.defaultNear
}

// Encode compresses one native frame. Signed near-lossless samples are
// offset by half the range so that the error bound holds across zero.
func (c *Codec) Encode(frame []byte, info *imagetypes.FrameInfo, p *codec.Parameters) ([]byte, error) {
	if !c.CanEncode(info) {
		return nil, fmt.Errorf("%w: %s cannot encode %d/%d bits with %d samples",
			codec.ErrUnsupportedFormat, c.Name(), info.BitsStored, info.BitsAllocated, info.SamplesPerPixel)
	}
	if p != nil {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if len(frame) < codec.FrameLength(info) {
		return nil, fmt.Errorf("%w: frame is %d bytes, want %d", codec.ErrInvalidParameter, len(frame), codec.FrameLength(info))
	}
	frame = codec.Interleave(frame[:codec.FrameLength(info)], info)
	bits := int(info.BitsStored)
	samples, err := codec.ReadSamples(frame, int(info.BitsAllocated), bits)
	if err != nil {
		return nil, err
	}
	near := c.near(p)
	if near > 0 && info.PixelRepresentation == 1 {
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
	return EncodeSamples(planes, int(info.Width), int(info.Height), bits, near)
}

// Decode decompresses one frame to interleaved little endian samples.
func (c *Codec) Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error) {
	planes, width, height, bits, near, err := DecodeSamples(data)
	if err != nil {
		return nil, nil, fmt.Errorf("JPEG-LS decode failed: %w", err)
	}

	out := &imagetypes.FrameInfo{PhotometricInterpretation: "MONOCHROME2"}
	if info != nil {
		*out = *info
		if int(info.Width) != width || int(info.Height) != height {
			return nil, nil, fmt.Errorf("decoded dimensions (%dx%d) don't match expected (%dx%d)",
				width, height, info.Width, info.Height)
		}
		if int(info.SamplesPerPixel) != len(planes) {
			return nil, nil, fmt.Errorf("decoded components (%d) don't match expected (%d)",
				len(planes), info.SamplesPerPixel)
		}
	} else if len(planes) > 1 {
		out.PhotometricInterpretation = "RGB"
	}
	out.Width = uint16(width)
	out.Height = uint16(height)
	out.SamplesPerPixel = uint16(len(planes))
	out.PlanarConfiguration = 0
	if out.BitsAllocated == 0 || int(out.BitsStored) != bits {
		out.BitsStored = uint16(bits)
		out.HighBit = uint16(bits - 1)
	}
	if out.BitsAllocated < out.BitsStored {
		out.BitsAllocated = 8
		if bits > 8 {
			out.BitsAllocated = 16
		}
	}

	spp := len(planes)
	samples := make([]int, width*height*spp)
	for s, plane := range planes {
		for i, v := range plane {
			samples[i*spp+s] = v
		}
	}
	signed := out.PixelRepresentation == 1
	if near > 0 && signed {
		flipSign(samples, bits)
	}
	return codec.WriteSamples(samples, int(out.BitsAllocated), bits, signed), out, nil
}

// flipSign toggles the top stored bit, mapping two's complement samples to
// offset binary and back.
func flipSign(samples []int, bits int) {
	top := 1 << uint(bits-1)
	for i := range samples {
		samples[i] ^= top
	}
}

func init() {
	for _, uid := range []string{transfersyntax.JPEGLSLossless, transfersyntax.JPEGLSNearLossless} {
		c := NewCodec(uid)
		codec.Register(c)
		codec.Export(c)
	}
}
