package lossless

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

var (
	_ codec.Codec      = (*LosslessCodec)(nil)
	_ codec.Capability = (*LosslessCodec)(nil)
)

// LosslessCodec is JPEG Lossless, Non-Hierarchical (Process 14). The
// first-order syntax (.70) always uses selection value 1.
type LosslessCodec struct {
	uid string
}

// NewLosslessCodec creates a codec for transfer syntax uid, which must be
// JPEGLossless or JPEGLosslessSV1
func NewLosslessCodec(uid string) *LosslessCodec {
	return &LosslessCodec{uid: uid}
}

// Name returns the codec name
func (c *LosslessCodec) Name() string {
	if c.uid == transfersyntax.JPEGLosslessSV1 {
		return "jpeg-lossless-sv1"
	}
	return "jpeg-lossless"
}

// UID returns the transfer syntax UID
func (c *LosslessCodec) UID() string {
	return c.uid
}

// CanEncode accepts 2 to 16 stored bits in 8 or 16 bit containers
func (c *LosslessCodec) CanEncode(info *imagetypes.FrameInfo) bool {
	return info != nil &&
		(info.BitsAllocated == 8 || info.BitsAllocated == 16) &&
		info.BitsStored >= 2 && info.BitsStored <= 16 && info.BitsStored <= info.BitsAllocated &&
		info.SamplesPerPixel >= 1 && info.SamplesPerPixel <= 4
}

func (c *LosslessCodec) predictor(p *codec.Parameters) int {
	if c.uid == transfersyntax.JPEGLosslessSV1 {
		return 1
	}
	if p == nil {
		return 0
	}
	return p.Predictor
}

// Encode compresses one native frame. Signed samples are coded as their
// low BitsStored bits and sign extended again on decode.
func (c *LosslessCodec) Encode(frame []byte, info *imagetypes.FrameInfo, p *codec.Parameters) ([]byte, error) {
	if !c.CanEncode(info) {
		return nil, fmt.Errorf("%w: %s cannot encode %d/%d bits with %d samples",
			codec.ErrUnsupportedFormat, c.Name(), info.BitsStored, info.BitsAllocated, info.SamplesPerPixel)
	}
	if len(frame) < codec.FrameLength(info) {
		return nil, fmt.Errorf("%w: frame is %d bytes, want %d", codec.ErrInvalidParameter, len(frame), codec.FrameLength(info))
	}
	frame = codec.Interleave(frame[:codec.FrameLength(info)], info)
	samples, err := codec.ReadSamples(frame, int(info.BitsAllocated), int(info.BitsStored))
	if err != nil {
		return nil, err
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
	return EncodeSamples(planes, int(info.Width), int(info.Height), int(info.BitsStored), c.predictor(p))
}

// Decode decompresses one frame to interleaved little endian samples. When
// info is given its BitsAllocated and PixelRepresentation shape the output.
func (c *LosslessCodec) Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error) {
	planes, width, height, bits, err := DecodeSamples(data)
	if err != nil {
		return nil, nil, fmt.Errorf("JPEG Lossless decode failed: %w", err)
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
	return codec.WriteSamples(samples, int(out.BitsAllocated), bits, signed), out, nil
}

func init() {
	for _, uid := range []string{transfersyntax.JPEGLossless, transfersyntax.JPEGLosslessSV1} {
		c := NewLosslessCodec(uid)
		codec.Register(c)
		codec.Export(c)
	}
}
